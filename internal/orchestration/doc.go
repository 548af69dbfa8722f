// Package orchestration evaluates magnitude operations through the native
// adapter. It runs single evaluations and concurrent batches of jobs,
// cross-checks results against an independent oracle, and decouples the
// work from its presentation via ProgressReporter and ResultPresenter.
package orchestration
