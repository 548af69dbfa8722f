// Package app wires the configuration, the magnitude runtime and the
// presentation layers into the magcalc command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/calibration"
	"github.com/agbru/magcalc/internal/cli"
	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/metrics"
	"github.com/agbru/magcalc/internal/native"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

// Application represents the magcalc application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
	// In is read by batch mode when the batch file is "-" and by the REPL.
	In io.Reader
}

// services is the state shared by every mode for one run.
type services struct {
	pool    *alloc.Pool
	engine  *orchestration.Engine
	metrics *metrics.OperationMetrics
	logger  *logging.ZerologAdapter
}

// New creates a new Application instance by parsing command-line arguments.
// The Karatsuba threshold comes from the flag, then a fresh calibration
// profile, then the hardware estimate.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "magcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = cfgWithProfile
	}
	cfg = config.ApplyAdaptiveThresholds(cfg)

	return &Application{Config: cfg, ErrWriter: errWriter, In: os.Stdin}, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	zerolog.SetGlobalLevel(logging.ParseLevel(a.Config.LogLevel))
	ui.InitTheme(a.Config.NoColor)

	rt, err := a.newRuntime()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	switch a.Config.Mode {
	case config.ModeBatch:
		return a.runBatch(ctx, rt, out)
	case config.ModeServe:
		return a.runServer(ctx, rt)
	case config.ModeCalibrate:
		return a.runCalibration(ctx, rt, out)
	case config.ModeREPL:
		return a.runREPL(rt, out)
	case config.ModeTUI:
		return a.runTUI(ctx, rt)
	default:
		return a.runEval(ctx, rt, out)
	}
}

// newRuntime builds the allocator, the calculator and the engine shared by
// the executions of this run.
func (a *Application) newRuntime() (*services, error) {
	limitWords, err := poolLimitWords(a.Config)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(a.ErrWriter, "magcalc")
	zl := logger.Zerolog()

	pool := alloc.NewPool(alloc.Options{
		LimitWords: limitWords,
		Collector:  alloc.NewRuntimeCollector(zl, true),
		Logger:     zl,
	})
	calc := magnitude.NewCalculator(pool, magnitude.WithKaratsubaThreshold(a.Config.KaratsubaThreshold))

	ops := metrics.NewOperationMetrics()
	ops.RegisterAllocator(pool.Stats)
	invoker := native.NewInvoker(nil, native.WithRecorder(ops), native.WithLogger(zl))

	return &services{
		pool:    pool,
		engine:  orchestration.NewEngine(calc, invoker, a.Config.Verify),
		metrics: ops,
		logger:  logger,
	}, nil
}

// poolLimitWords converts --memory-limit to words. Serve mode, which
// evaluates requests from untrusted clients, falls back to
// config.DefaultServeMemoryLimit instead of running unbounded.
func poolLimitWords(cfg config.AppConfig) (uint64, error) {
	limit := cfg.MemoryLimit
	if limit == "" && cfg.Mode == config.ModeServe {
		limit = config.DefaultServeMemoryLimit
	}
	bytes, err := config.ParseMemoryLimit(limit)
	if err != nil {
		return 0, err
	}
	return bytes / 4, nil
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, config.Operations); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runCalibration measures the Karatsuba cutover and saves the profile.
func (a *Application) runCalibration(ctx context.Context, rt *services, out io.Writer) int {
	ctx, stop := lifecycle(ctx, a.Config)
	defer stop()

	opts := calibration.Options{
		ProfilePath: a.Config.CalibrationProfile,
		Logger:      rt.logger,
	}
	if opts.ProfilePath == "" {
		opts.ProfilePath = calibration.GetDefaultProfilePath()
	}
	var reporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	if a.Config.Quiet {
		reporter = orchestration.NullProgressReporter{}
	}
	return calibration.RunCalibration(ctx, out, rt.pool, opts, reporter, cli.CLIColorProvider{})
}

// runREPL starts the line-oriented interactive session.
func (a *Application) runREPL(rt *services, out io.Writer) int {
	repl := cli.NewREPL(rt.engine, cli.REPLConfig{
		Timeout:   a.Config.Timeout,
		HexOutput: a.Config.Hex,
		Verbose:   a.Config.Verbose,
	})
	repl.SetInput(a.In)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// lifecycle bounds ctx by the configured timeout and cancels it on SIGINT
// or SIGTERM.
func lifecycle(ctx context.Context, cfg config.AppConfig) (context.Context, context.CancelFunc) {
	ctx, cancelTimeout := context.WithTimeout(ctx, cfg.Timeout)
	ctx, stopSignals := signalContext(ctx)
	return ctx, func() {
		stopSignals()
		cancelTimeout()
	}
}

// signalContext cancels ctx on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
