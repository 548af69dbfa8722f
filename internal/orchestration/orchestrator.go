package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/native"
)

// JobResult is the outcome of one batch job.
type JobResult struct {
	Job      Job
	Result   Result
	Duration time.Duration
	// Err is the evaluation error, nil on success.
	Err error
	// Verified is set when the result was cross-checked; Mismatch holds the
	// disagreement found, if any.
	Verified bool
	Mismatch error
}

// JobRunner runs a single job.
type JobRunner interface {
	Run(ctx context.Context, job Job) JobResult
}

// Engine runs jobs on a shared calculator. Each job gets its own
// native.Execution, released when the job completes, so any number of jobs
// may run concurrently.
type Engine struct {
	calc    *magnitude.Calculator
	invoker *native.Invoker
	verify  bool
}

// NewEngine creates an engine. When verify is set every result is checked
// with Verify.
func NewEngine(calc *magnitude.Calculator, invoker *native.Invoker, verify bool) *Engine {
	return &Engine{calc: calc, invoker: invoker, verify: verify}
}

// Calculator returns the calculator shared by the jobs of en.
func (en *Engine) Calculator() *magnitude.Calculator { return en.calc }

// Invoker returns the invoker used by en.
func (en *Engine) Invoker() *native.Invoker { return en.invoker }

// Verifies reports whether en cross-checks its results.
func (en *Engine) Verifies() bool { return en.verify }

// Run evaluates job on a fresh execution.
func (en *Engine) Run(ctx context.Context, job Job) JobResult {
	e := native.NewExecution(en.calc)
	defer e.Close()

	start := time.Now()
	res, err := Evaluate(ctx, en.invoker, e, job.Op, job.Operands)
	jr := JobResult{Job: job, Result: res, Duration: time.Since(start), Err: err}
	if en.verify {
		jr.Verified = true
		jr.Mismatch = Verify(en.calc, job, res, err)
	}
	return jr
}

// ProgressBufferMultiplier sizes the progress channel relative to the
// number of jobs.
const ProgressBufferMultiplier = 2

// ExecuteBatch runs jobs concurrently, at most workers at a time (no limit
// when workers <= 0), and returns their results in job order. A failing job
// does not stop the others; cancellation of ctx does.
func ExecuteBatch(ctx context.Context, runner JobRunner, jobs []Job, workers int, progressReporter ProgressReporter, out io.Writer) []JobResult {
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	results := make([]JobResult, len(jobs))
	progressChan := make(chan ProgressUpdate, len(jobs)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(jobs), out)

	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = JobResult{Job: job, Err: err}
			} else {
				results[i] = runner.Run(ctx, job)
			}
			progressChan <- ProgressUpdate{TaskIndex: i, Value: 1}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// BatchSummary counts the outcomes of a batch.
type BatchSummary struct {
	Total      int
	Succeeded  int
	Failed     int
	Mismatched int
	Elapsed    time.Duration
}

// Summarize counts the outcomes in results.
func Summarize(results []JobResult) BatchSummary {
	s := BatchSummary{Total: len(results)}
	for _, r := range results {
		s.Elapsed += r.Duration
		if r.Err != nil {
			s.Failed++
		} else {
			s.Succeeded++
		}
		if r.Mismatch != nil {
			s.Mismatched++
		}
	}
	return s
}

// AnalyzeResults presents a batch and maps its outcome to an exit code.
// A single mismatch fails the batch with ExitErrorMismatch. Jobs that raised
// runtime exceptions or were rejected as invalid are reported but do not
// abort the analysis; when every job failed the first error decides the exit
// code.
func AnalyzeResults(results []JobResult, opts PresentationOptions, presenter ResultPresenter, handler ErrorHandler, out io.Writer) int {
	presenter.PresentBatchTable(results, opts, out)
	summary := Summarize(results)

	if summary.Mismatched > 0 {
		fmt.Fprintf(out, "\nBatch Status: CRITICAL ERROR! %d result(s) disagree with the reference.\n", summary.Mismatched)
		return apperrors.ExitErrorMismatch
	}

	var firstError error
	for _, r := range results {
		if r.Err != nil {
			firstError = r.Err
			break
		}
	}

	switch {
	case summary.Failed == 0:
		fmt.Fprintf(out, "\nBatch Status: Success. %d job(s) completed.\n", summary.Total)
		return apperrors.ExitSuccess
	case summary.Succeeded == 0:
		fmt.Fprintf(out, "\nBatch Status: Failure. No job completed.\n")
		return handler.HandleError(firstError, summary.Elapsed, out)
	case isBatchFatal(firstError):
		fmt.Fprintf(out, "\nBatch Status: Aborted after %d of %d job(s).\n", summary.Succeeded, summary.Total)
		return handler.HandleError(firstError, summary.Elapsed, out)
	default:
		fmt.Fprintf(out, "\nBatch Status: %d of %d job(s) failed.\n", summary.Failed, summary.Total)
		return apperrors.ExitErrorGeneric
	}
}

// isBatchFatal reports errors that come from the environment rather than
// from a job's operands.
func isBatchFatal(err error) bool {
	var memErr apperrors.MemoryError
	return apperrors.IsContextError(err) || errors.As(err, &memErr)
}
