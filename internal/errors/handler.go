package apperrors

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape codes used when reporting errors.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColors struct{}

func (noColors) Red() string    { return "" }
func (noColors) Yellow() string { return "" }
func (noColors) Reset() string  { return "" }

// HandleCalculationError reports err on out and returns the matching exit
// code. colors may be nil for plain output.
//
// Parameters:
//   - err: The error to report; nil reports nothing.
//   - duration: The time spent before the failure, shown when non-zero.
//   - out: The writer for the report.
//   - colors: The color scheme, or nil.
//
// Returns:
//   - int: One of the Exit* constants.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColors{}
	}
	elapsed := ""
	if duration > 0 {
		elapsed = fmt.Sprintf(" after %s", duration)
	}

	var memErr MemoryError
	code := ExitCode(err)
	switch {
	case code == ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The execution limit was reached%s.%s\n", colors.Red(), elapsed, colors.Reset())
	case code == ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), elapsed, colors.Reset())
	case errors.As(err, &memErr):
		fmt.Fprintf(out, "%sStatus: Failure (Out of memory): %v%s\n", colors.Red(), err, colors.Reset())
	case IsRuntimeException(err):
		fmt.Fprintf(out, "%sStatus: Exception%s: %v%s\n", colors.Red(), elapsed, err, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure. An unexpected error occurred: %v%s\n", colors.Red(), err, colors.Reset())
	}
	return code
}
