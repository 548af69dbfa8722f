package cli

import (
	"bytes"
	"io"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

// MockSpinner for testing
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
}

func TestDisplayResult(t *testing.T) {
	ui.InitTheme(true)

	bigValue := magnitude.FromBig(new(big.Int).Exp(big.NewInt(10), big.NewInt(200), nil))

	tests := []struct {
		name     string
		result   orchestration.Result
		hex      bool
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "Small value",
			result:   orchestration.Result{Op: "add", Value: magnitude.FromUint64(12345), Duration: time.Millisecond},
			contains: []string{"--- Result ---", "Operation:  add", "Size:       14 bits, 1 words", "12,345"},
		},
		{
			name:     "Hex value",
			result:   orchestration.Result{Op: "mul", Value: magnitude.FromUint64(0xdeadbeef)},
			hex:      true,
			contains: []string{"0xdeadbeef"},
		},
		{
			name:     "Comparison",
			result:   orchestration.Result{Op: "cmp", Sign: -1},
			contains: []string{"Comparison: -1"},
			excludes: []string{"Size:"},
		},
		{
			name:     "Truncated Output",
			result:   orchestration.Result{Op: "mul", Value: bigValue},
			contains: []string{"(truncated)", "Tip: use", "(201 digits)"},
		},
		{
			name:     "Verbose Output",
			result:   orchestration.Result{Op: "mul", Value: bigValue},
			verbose:  true,
			contains: []string{"1,000,000"},
			excludes: []string{"truncated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			DisplayResult(tt.result, tt.hex, tt.verbose, &buf)
			output := buf.String()
			for _, s := range tt.contains {
				if !strings.Contains(output, s) {
					t.Errorf("Expected output to contain %q, but got:\n%s", s, output)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(output, s) {
					t.Errorf("Expected output not to contain %q, but got:\n%s", s, output)
				}
			}
		})
	}
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
}

func TestColors(t *testing.T) {
	ui.InitTheme(true)
	for name, color := range map[string]func() string{
		"reset": ui.ColorReset, "red": ui.ColorRed, "green": ui.ColorGreen,
		"yellow": ui.ColorYellow, "blue": ui.ColorBlue, "magenta": ui.ColorMagenta,
		"cyan": ui.ColorCyan, "dim": ui.ColorDim, "bold": ui.ColorBold,
		"underline": ui.ColorUnderline,
	} {
		if got := color(); got != "" {
			t.Errorf("%s: expected no escape code without colors, got %q", name, got)
		}
	}
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner {
		return mockS
	}

	var wg sync.WaitGroup
	wg.Add(1)

	progressChan := make(chan orchestration.ProgressUpdate)
	var out bytes.Buffer

	go func() {
		progressChan <- orchestration.ProgressUpdate{TaskIndex: 0, Value: 1}
		progressChan <- orchestration.ProgressUpdate{TaskIndex: 1, Value: 1}
		time.Sleep(10 * time.Millisecond)
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, 2, &out)
	wg.Wait()

	if !mockS.started {
		t.Error("Spinner should have started")
	}
	if !mockS.stopped {
		t.Error("Spinner should have stopped")
	}
	if !strings.Contains(out.String(), "100.0%") {
		t.Errorf("Expected final progress line at 100%%, got %q", out.String())
	}
}

func TestDisplayProgress_ZeroTasks(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan orchestration.ProgressUpdate, 1)
	progressChan <- orchestration.ProgressUpdate{}
	close(progressChan)

	DisplayProgress(&wg, progressChan, 0, io.Discard)
	wg.Wait()
	if len(progressChan) != 0 {
		t.Error("Channel should have been drained")
	}
}
