package format

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxETA caps estimates so that a stalled task does not print absurd values.
const maxETA = 24 * time.Hour

// ProgressState tracks the completion fraction of a fixed number of tasks.
type ProgressState struct {
	progresses []float64
	numTasks   int
}

// NewProgressState creates a state for n tasks, all at zero.
func NewProgressState(n int) *ProgressState {
	return &ProgressState{progresses: make([]float64, max(n, 0)), numTasks: max(n, 0)}
}

// Update records the progress of task i, clamped to [0, 1]. Out-of-range
// indices are ignored.
func (ps *ProgressState) Update(i int, progress float64) {
	if i < 0 || i >= ps.numTasks {
		return
	}
	ps.progresses[i] = min(max(progress, 0), 1)
}

// CalculateAverage returns the mean progress of all tasks.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numTasks == 0 {
		return 0
	}
	var sum float64
	for _, p := range ps.progresses {
		sum += p
	}
	return sum / float64(ps.numTasks)
}

// ProgressWithETA extends ProgressState with a rate estimate. It is safe for
// concurrent use.
type ProgressWithETA struct {
	*ProgressState
	mu           sync.Mutex
	numTasks     int
	startTime    time.Time
	progressRate float64 // average progress per second
}

// NewProgressWithETA creates a tracker for n tasks starting now.
func NewProgressWithETA(n int) *ProgressWithETA {
	return &ProgressWithETA{
		ProgressState: NewProgressState(n),
		numTasks:      n,
		startTime:     time.Now(),
	}
}

// UpdateWithETA records the progress of task i and returns the overall
// progress and the estimated remaining time.
func (p *ProgressWithETA) UpdateWithETA(i int, progress float64) (float64, time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Update(i, progress)
	avg := p.CalculateAverage()
	if elapsed := time.Since(p.startTime).Seconds(); elapsed > 0 {
		p.progressRate = avg / elapsed
	}
	return avg, p.eta(avg)
}

// GetETA returns the current estimate of the remaining time.
func (p *ProgressWithETA) GetETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eta(p.CalculateAverage())
}

func (p *ProgressWithETA) eta(avg float64) time.Duration {
	if p.progressRate <= 0 || avg <= 0 {
		return 0
	}
	remaining := (1 - avg) / p.progressRate
	eta := time.Duration(remaining * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// ProgressBar renders progress as a bar of length cells.
func ProgressBar(progress float64, length int) string {
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar]  42.0% ETA: 1m5s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), min(max(progress, 0), 1)*100, FormatETA(eta))
}
