package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for a running batch.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numTasks int, out io.Writer) {
	DisplayProgress(wg, progressChan, numTasks, out)
}

// CLIColorProvider supplies the active theme's colors to error reports.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output.
type CLIResultPresenter struct{}

var (
	_ orchestration.ResultPresenter   = CLIResultPresenter{}
	_ orchestration.DurationFormatter = CLIResultPresenter{}
	_ orchestration.ErrorHandler      = CLIResultPresenter{}
)

// maxValueColumn caps the width of the value column of the batch table.
const maxValueColumn = 48

// PresentBatchTable prints one row per job with its duration and outcome.
// Padding is computed on the plain text so ANSI codes do not skew columns.
func (CLIResultPresenter) PresentBatchTable(results []orchestration.JobResult, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n--- Batch Summary ---\n")

	maxIDLen, maxOpLen, maxDurationLen := 2, 2, 8
	for _, res := range results {
		maxIDLen = max(maxIDLen, len(res.Job.ID))
		maxOpLen = max(maxOpLen, len(res.Job.Op))
		maxDurationLen = max(maxDurationLen, len(formatRowDuration(res.Duration)))
	}

	fmt.Fprintf(out, "%sID%s%s   %sOp%s%s   %sDuration%s%s   %sResult%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxIDLen-2),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxOpLen-2),
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxDurationLen-8),
		ui.ColorUnderline(), ui.ColorReset())

	for _, res := range results {
		var status string
		switch {
		case res.Mismatch != nil:
			status = fmt.Sprintf("%s✗ MISMATCH (%v)%s", ui.ColorRed(), res.Mismatch, ui.ColorReset())
		case res.Err != nil:
			status = fmt.Sprintf("%s❌ %v%s", ui.ColorRed(), res.Err, ui.ColorReset())
		default:
			value := res.Result.Format(opts.Hex)
			if !opts.Verbose && len(value) > maxValueColumn {
				value = value[:maxValueColumn/2] + "..." + value[len(value)-maxValueColumn/2:]
			}
			mark := "✅"
			if res.Verified {
				mark = "✅✓"
			}
			status = fmt.Sprintf("%s%s %s%s", ui.ColorGreen(), mark, value, ui.ColorReset())
		}
		duration := formatRowDuration(res.Duration)
		fmt.Fprintf(out, "%s%s%s%s   %s%s   %s%s%s%s   %s\n",
			ui.ColorBlue(), res.Job.ID, ui.ColorReset(), padRight("", maxIDLen-len(res.Job.ID)),
			res.Job.Op, padRight("", maxOpLen-len(res.Job.Op)),
			ui.ColorYellow(), duration, ui.ColorReset(), padRight("", maxDurationLen-len(duration)),
			status)
	}
}

func formatRowDuration(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

// padRight pads s with length spaces.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentResult displays a single evaluation result.
func (CLIResultPresenter) PresentResult(result orchestration.Result, opts orchestration.PresentationOptions, out io.Writer) {
	if opts.Quiet {
		DisplayQuietResult(out, result, opts.Hex)
		return
	}
	DisplayResult(result, opts.Hex, opts.Verbose, out)
}

// FormatDuration formats a duration for display.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return format.FormatExecutionDuration(d)
}

// HandleError reports err and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// DisplayAllocatorStats prints the allocator counters.
func DisplayAllocatorStats(stats alloc.Stats, out io.Writer) {
	fmt.Fprintf(out, "\nAllocator Stats:\n")
	fmt.Fprintf(out, "  Live:         %s\n", format.FormatBytes(4*stats.LiveWords))
	fmt.Fprintf(out, "  Peak:         %s\n", format.FormatBytes(4*stats.PeakWords))
	fmt.Fprintf(out, "  Cached:       %s\n", format.FormatBytes(4*stats.CachedWords))
	if stats.LimitWords > 0 {
		fmt.Fprintf(out, "  Limit:        %s\n", format.FormatBytes(4*stats.LimitWords))
	} else {
		fmt.Fprintf(out, "  Limit:        none\n")
	}
	fmt.Fprintf(out, "  Allocations:  %d (%d reused)\n", stats.Allocations, stats.Reuses)
	fmt.Fprintf(out, "  Frees:        %d\n", stats.Frees)
	fmt.Fprintf(out, "  Collections:  %d\n", stats.Collections)
	if stats.Failures > 0 {
		fmt.Fprintf(out, "  Failures:     %s%d%s\n", ui.ColorRed(), stats.Failures, ui.ColorReset())
	}
}
