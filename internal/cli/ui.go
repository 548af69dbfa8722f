//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/orchestration"
)

const (
	// TruncationLimit is the digit count from which a result is summarized
	// in standard output.
	TruncationLimit = 100
	// DisplayEdges is the number of leading and trailing digits shown for a
	// summarized result.
	DisplayEdges = 25
	// ProgressRefreshRate is the refresh period of the progress line.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in cells of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	Start()
	Stop()
	// UpdateSuffix sets the text displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with an aggregated progress bar and ETA
// until progressChan is closed. With no tasks it drains the channel and
// returns.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numTasks int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numTasks)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(" " + format.FormatProgressBarWithETA(0, 0, ProgressBarWidth))
	s.Start()
	defer func() {
		s.Stop()
		fmt.Fprintf(out, "%s\n", format.FormatProgressBarWithETA(agg.CalculateAverage(), 0, ProgressBarWidth))
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				return
			}
			agg.Update(update)
		case <-ticker.C:
			suffix := fmt.Sprintf(" %s (%d jobs)", format.FormatProgressBarWithETA(agg.CalculateAverage(), agg.GetETA(), ProgressBarWidth), numTasks)
			s.UpdateSuffix(suffix)
		}
	}
}
