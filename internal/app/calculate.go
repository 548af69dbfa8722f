package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/cli"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/metrics"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/server"
	"github.com/agbru/magcalc/internal/tui"
	"github.com/agbru/magcalc/internal/ui"
)

// runEval evaluates the single operation given on the command line.
func (a *Application) runEval(ctx context.Context, rt *services, out io.Writer) int {
	ctx, stop := lifecycle(ctx, a.Config)
	defer stop()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
	}

	job := orchestration.Job{ID: "eval", Op: a.Config.Op, Operands: a.Config.Operands}
	jr := rt.engine.Run(ctx, job)
	if jr.Err != nil {
		return apperrors.HandleCalculationError(jr.Err, jr.Duration, a.ErrWriter, cli.CLIColorProvider{})
	}
	if jr.Mismatch != nil {
		fmt.Fprintf(a.ErrWriter, "%sVerification failed: %v%s\n", ui.ColorRed(), jr.Mismatch, ui.ColorReset())
		return apperrors.ExitErrorMismatch
	}

	outputCfg := cli.OutputConfig{
		OutputFile: a.Config.Output,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Hex:        a.Config.Hex,
	}
	if err := cli.DisplayResultWithConfig(out, jr.Result, a.Config.Operands, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if jr.Verified && !a.Config.Quiet {
		fmt.Fprintf(out, "%s✓ Verified against math/big%s\n", ui.ColorGreen(), ui.ColorReset())
	}
	return apperrors.ExitSuccess
}

// runBatch loads a job file and evaluates its jobs concurrently.
func (a *Application) runBatch(ctx context.Context, rt *services, out io.Writer) int {
	jobs, err := a.loadJobs()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error loading batch: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, stop := lifecycle(ctx, a.Config)
	defer stop()

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		fmt.Fprintf(out, "Jobs: %d\n", len(jobs))
	}

	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	gc := alloc.NewGCController(a.Config.GCMode, estimateWorkingSetWords(jobs))
	gc.SetLogger(rt.logger.Zerolog())
	gc.Begin()
	results := orchestration.ExecuteBatch(ctx, rt.engine, jobs, a.Config.Workers, progressReporter, progressOut)
	gc.End()

	opts := orchestration.PresentationOptions{Hex: a.Config.Hex, Verbose: a.Config.Verbose, Quiet: a.Config.Quiet}
	if a.Config.Quiet {
		return a.presentQuietBatch(results, out)
	}
	exitCode := orchestration.AnalyzeResults(results, opts, cli.CLIResultPresenter{}, cli.CLIResultPresenter{}, out)

	if a.Config.Verbose {
		snap := metrics.NewMemoryCollector(rt.pool).Snapshot()
		cli.DisplayAllocatorStats(snap.Allocator, out)
		fmt.Fprintf(out, "Go heap:    %s (%d GC cycles)\n", format.FormatBytes(snap.HeapAlloc), snap.NumGC)
		if gc.Active() {
			gcs := gc.Stats()
			fmt.Fprintf(out, "GC paused:  %d cycle(s) during the batch, %s allocated\n",
				gcs.NumGC, format.FormatBytes(gcs.TotalAlloc))
		}
	}
	return exitCode
}

// presentQuietBatch prints one value per line, or the error of a failed job,
// and derives the exit code from the same rules as the full report.
func (a *Application) presentQuietBatch(results []orchestration.JobResult, out io.Writer) int {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "%s: error: %v\n", r.Job.ID, r.Err)
		case r.Mismatch != nil:
			fmt.Fprintf(out, "%s: mismatch: %v\n", r.Job.ID, r.Mismatch)
		default:
			cli.DisplayQuietResult(out, r.Result, a.Config.Hex)
		}
	}
	return orchestration.AnalyzeResults(results, orchestration.PresentationOptions{Quiet: true},
		quietPresenter{}, cli.CLIResultPresenter{}, io.Discard)
}

// quietPresenter suppresses the batch table.
type quietPresenter struct{ cli.CLIResultPresenter }

func (quietPresenter) PresentBatchTable([]orchestration.JobResult, orchestration.PresentationOptions, io.Writer) {
}

func (a *Application) loadJobs() ([]orchestration.Job, error) {
	if a.Config.BatchFile == "-" {
		return orchestration.LoadJobs(a.In)
	}
	f, err := os.Open(a.Config.BatchFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return orchestration.LoadJobs(f)
}

// estimateWorkingSetWords approximates the words a batch keeps live: each
// operand's length plus room for a product of the same order.
func estimateWorkingSetWords(jobs []orchestration.Job) uint64 {
	var total uint64
	for _, j := range jobs {
		for _, op := range j.Operands {
			// A hex digit is 4 bits, a decimal digit about 3.3; both round
			// down to eight digits per word at worst.
			total += uint64(len(op)/8 + 1)
		}
	}
	return 3 * total
}

// runServer serves the HTTP API until ctx is canceled or a signal arrives.
// The run timeout does not apply; each request carries its own.
func (a *Application) runServer(ctx context.Context, rt *services) int {
	ctx, stop := signalContext(ctx)
	defer stop()

	srv := server.NewServer(rt.engine, a.Config.Addr,
		server.WithLogger(logging.NewLogger(a.ErrWriter, "server")),
		server.WithMetrics(server.NewMetrics(rt.metrics)),
		server.WithAllocatorStats(rt.pool.Stats),
		server.WithRequestTimeout(a.Config.Timeout),
	)
	rt.logger.Info("listening", logging.String("addr", a.Config.Addr))
	if err := srv.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		rt.logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive dashboard. The run timeout bounds each
// evaluation rather than the session.
func (a *Application) runTUI(ctx context.Context, rt *services) int {
	ctx, stop := signalContext(ctx)
	defer stop()

	return tui.Run(ctx, tui.Options{
		Engine:  rt.engine,
		Stats:   rt.pool.Stats,
		Timeout: a.Config.Timeout,
		Hex:     a.Config.Hex,
		Version: Version,
	})
}

