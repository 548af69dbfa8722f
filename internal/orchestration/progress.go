package orchestration

import (
	"time"

	"github.com/agbru/magcalc/internal/format"
)

// ProgressAggregator folds per-task updates into an overall progress and an
// ETA. Both the CLI and the TUI consume batch progress through it.
type ProgressAggregator struct {
	state    *format.ProgressWithETA
	numTasks int
}

// NewProgressAggregator creates an aggregator for numTasks tasks. It returns
// nil if numTasks <= 0.
func NewProgressAggregator(numTasks int) *ProgressAggregator {
	if numTasks <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:    format.NewProgressWithETA(numTasks),
		numTasks: numTasks,
	}
}

// AggregatedProgress holds the result of processing a single progress update.
type AggregatedProgress struct {
	TaskIndex       int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update processes a single progress update and returns the aggregated result.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	avgProgress, eta := a.state.UpdateWithETA(update.TaskIndex, update.Value)
	return AggregatedProgress{
		TaskIndex:       update.TaskIndex,
		Value:           update.Value,
		AverageProgress: avgProgress,
		ETA:             eta,
	}
}

// CalculateAverage returns the current average progress without updating.
func (a *ProgressAggregator) CalculateAverage() float64 {
	return a.state.CalculateAverage()
}

// GetETA returns the current ETA estimate without updating.
func (a *ProgressAggregator) GetETA() time.Duration {
	return a.state.GetETA()
}

// NumTasks returns the number of tasks being tracked.
func (a *ProgressAggregator) NumTasks() int {
	return a.numTasks
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}
