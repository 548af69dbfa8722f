package orchestration

import (
	"io"
	"sync"
	"time"
)

// ProgressUpdate reports the progress of one task of a batch.
type ProgressUpdate struct {
	// TaskIndex is the position of the job in the batch.
	TaskIndex int
	// Value is the completion fraction, from 0.0 to 1.0.
	Value float64
}

// PresentationOptions configures how results are presented to the user.
type PresentationOptions struct {
	Hex     bool
	Verbose bool
	Quiet   bool
}

// ProgressReporter defines the interface for displaying batch progress.
// It decouples the orchestration layer from the presentation layer.
type ProgressReporter interface {
	// DisplayProgress consumes updates until progressChan is closed, then
	// calls wg.Done.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numTasks int, out io.Writer) {
	f(wg, progressChan, numTasks, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting results.
type ResultPresenter interface {
	// PresentBatchTable displays one row per job of a batch.
	PresentBatchTable(results []JobResult, opts PresentationOptions, out io.Writer)

	// PresentResult displays a single evaluation result.
	PresentResult(result Result, opts PresentationOptions, out io.Writer)
}

// DurationFormatter formats durations for display.
type DurationFormatter interface {
	FormatDuration(d time.Duration) string
}

// ErrorHandler handles errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
