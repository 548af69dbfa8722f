// Package config defines the command-line configuration of magcalc: flag
// parsing, environment overrides and validation.
package config

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/agbru/magcalc/internal/errors"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "MAGCALC_"

// Execution modes.
const (
	ModeEval      = "eval"
	ModeBatch     = "batch"
	ModeServe     = "serve"
	ModeCalibrate = "calibrate"
	ModeREPL      = "repl"
	ModeTUI       = "tui"
)

// Modes lists the accepted values of --mode.
var Modes = []string{ModeEval, ModeBatch, ModeServe, ModeCalibrate, ModeREPL, ModeTUI}

// Defaults.
const (
	DefaultTimeout     = 1 * time.Minute
	DefaultAddr        = ":8080"
	DefaultLogLevel    = "info"
	DefaultProfileName = ".magcalc_calibration.json"
	DefaultGCMode      = "auto"

	// DefaultServeMemoryLimit bounds the allocator in serve mode when
	// --memory-limit is not given.
	DefaultServeMemoryLimit = "1GiB"
)

// GCModes lists the accepted values of --gc-mode.
var GCModes = []string{"auto", "aggressive", "disabled"}

// AppConfig aggregates the configuration parameters of the application.
type AppConfig struct {
	// Mode selects what the application does (eval, batch, serve, calibrate,
	// repl, tui).
	Mode string
	// Op is the operation evaluated in eval mode (add, sub, mul, div, rem,
	// cmp, shl, shr).
	Op string
	// Operands are the positional arguments of eval mode.
	Operands []string
	// KaratsubaThreshold is the multiplication cutover in words. Zero means
	// "resolve from the calibration profile or the hardware estimate".
	KaratsubaThreshold int
	// MemoryLimit caps the allocator, e.g. "512MB". Empty means unlimited.
	MemoryLimit string
	// Timeout bounds a whole run.
	Timeout time.Duration
	// Workers is the number of concurrent executions in batch mode. Zero
	// selects the number of CPUs.
	Workers int
	// BatchFile is the YAML job file of batch mode; "-" reads stdin.
	BatchFile string
	// Verify cross-checks every result against math/big and the alternate
	// multiplication path.
	Verify bool
	// Addr is the listen address of serve mode.
	Addr string
	// Hex prints results in hexadecimal instead of decimal.
	Hex bool
	// Quiet prints results only.
	Quiet bool
	// Verbose prints long values in full and adds allocator statistics.
	Verbose bool
	// Output is a file the eval result is also written to.
	Output string
	// NoColor disables colored output.
	NoColor bool
	// CalibrationProfile is the path of the calibration profile.
	CalibrationProfile string
	// LogLevel is the zerolog level name.
	LogLevel string
	// Completion generates a shell completion script for the named shell.
	Completion string
	// GCMode controls the Go garbage collector during batch runs: auto,
	// aggressive or disabled.
	GCMode string
}

// ParseConfig parses the command-line arguments into an AppConfig. Values
// come from flags first, then MAGCALC_ environment variables, then
// defaults. It returns flag.ErrHelp when help was requested.
//
// Parameters:
//   - programName: The name of the program (usually os.Args[0]).
//   - args: The command-line arguments (usually os.Args[1:]).
//   - errorWriter: The writer for usage and error messages.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: An error if parsing or validation failed.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	config := AppConfig{}
	fs := NewFlagSet(programName, &config)
	fs.SetOutput(errorWriter)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	config.Operands = fs.Args()

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// NewFlagSet declares every command-line flag of magcalc on a new flag set
// bound to config.
func NewFlagSet(programName string, config *AppConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.StringVar(&config.Mode, "mode", ModeEval, "Execution mode: "+strings.Join(Modes, ", ")+".")
	fs.StringVar(&config.Op, "op", "", "Operation for eval mode: "+strings.Join(Operations, ", ")+".")
	fs.IntVar(&config.KaratsubaThreshold, "karatsuba-threshold", 0, "Operand length in words from which Karatsuba multiplication is used (0 = auto).")
	fs.StringVar(&config.MemoryLimit, "memory-limit", "", "Allocator limit, e.g. 512MB or 2GiB (empty = unlimited, "+DefaultServeMemoryLimit+" in serve mode).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum duration of a run.")
	fs.IntVar(&config.Workers, "workers", 0, "Concurrent executions in batch mode (0 = number of CPUs).")
	fs.StringVar(&config.BatchFile, "batch", "", "YAML job file for batch mode (- for stdin).")
	fs.BoolVar(&config.Verify, "verify", false, "Cross-check every result against math/big.")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "Listen address for serve mode.")
	fs.BoolVar(&config.Hex, "hex", false, "Print results in hexadecimal.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print results only.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Print full values and allocator statistics.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for --verbose.")
	fs.StringVar(&config.Output, "output", "", "Also write the eval result to this file.")
	fs.StringVar(&config.Output, "o", "", "Shorthand for --output.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also honors NO_COLOR).")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path of the calibration profile (default ~/"+DefaultProfileName+").")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&config.GCMode, "gc-mode", DefaultGCMode, "Garbage collector control during batch runs: "+strings.Join(GCModes, ", ")+".")
	fs.StringVar(&config.Completion, "completion", "", "Generate a completion script: bash, zsh, fish, powershell.")
	return fs
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	if c.Completion != "" {
		return nil
	}
	if !slices.Contains(Modes, c.Mode) {
		return apperrors.NewConfigError("unknown mode %q (expected one of %s)", c.Mode, strings.Join(Modes, ", "))
	}
	if c.KaratsubaThreshold < 0 {
		return apperrors.NewConfigError("karatsuba threshold must be non-negative, got %d", c.KaratsubaThreshold)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("workers must be non-negative, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := ParseMemoryLimit(c.MemoryLimit); err != nil {
		return err
	}
	if c.GCMode != "" && !slices.Contains(GCModes, c.GCMode) {
		return apperrors.NewConfigError("unknown gc mode %q (expected one of %s)", c.GCMode, strings.Join(GCModes, ", "))
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}

	switch c.Mode {
	case ModeEval:
		arity, ok := OperationArity(c.Op)
		if !ok {
			return apperrors.NewConfigError("eval mode needs --op (one of %s), got %q", strings.Join(Operations, ", "), c.Op)
		}
		if len(c.Operands) != arity {
			return apperrors.NewConfigError("operation %s takes %d operands, got %d", c.Op, arity, len(c.Operands))
		}
	case ModeBatch:
		if c.BatchFile == "" {
			return apperrors.NewConfigError("batch mode needs --batch")
		}
	}
	return nil
}

var logLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {}, "disabled": {},
}

// Operations lists the operations accepted by eval mode, batch jobs and the
// REPL. mag reads one operand as two's-complement bytes and yields its
// magnitude; the others are binary.
var Operations = []string{"add", "sub", "mul", "div", "rem", "cmp", "shl", "shr", "mag"}

// OperationArity returns the number of operands of op.
func OperationArity(op string) (int, bool) {
	switch op {
	case "mag":
		return 1, true
	case "add", "sub", "mul", "div", "rem", "cmp", "shl", "shr":
		return 2, true
	default:
		return 0, false
	}
}

// ParseMemoryLimit parses a size such as "512K", "64MB", "2GiB" or a plain
// byte count. Decimal (KB, MB, GB) and binary (KiB, MiB, GiB, K, M, G)
// suffixes are accepted. The empty string means no limit and yields 0.
func ParseMemoryLimit(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	upper := strings.ToUpper(s)
	units := []struct {
		suffix string
		factor uint64
	}{
		{"KIB", 1 << 10}, {"MIB", 1 << 20}, {"GIB", 1 << 30}, {"TIB", 1 << 40},
		{"KB", 1e3}, {"MB", 1e6}, {"GB", 1e9}, {"TB", 1e12},
		{"K", 1 << 10}, {"M", 1 << 20}, {"G", 1 << 30}, {"T", 1 << 40},
		{"B", 1},
	}
	factor := uint64(1)
	num := upper
	for _, u := range units {
		if strings.HasSuffix(upper, u.suffix) {
			factor = u.factor
			num = strings.TrimSpace(strings.TrimSuffix(upper, u.suffix))
			break
		}
	}
	v, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, apperrors.NewConfigError("invalid memory limit %q", s)
	}
	if v > ^uint64(0)/factor {
		return 0, apperrors.NewConfigError("memory limit %q overflows", s)
	}
	return v * factor, nil
}
