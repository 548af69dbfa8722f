package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/ui"
)

func TestPresentBatchTable(t *testing.T) {
	ui.InitTheme(true)
	results := []orchestration.JobResult{
		{
			Job:      orchestration.Job{ID: "sum", Op: "add"},
			Result:   orchestration.Result{Op: "add", Value: magnitude.FromUint64(42)},
			Duration: 3 * time.Millisecond,
			Verified: true,
		},
		{
			Job: orchestration.Job{ID: "zero-div", Op: "div"},
			Err: apperrors.ErrDivisionByZero,
		},
		{
			Job:      orchestration.Job{ID: "bad", Op: "mul"},
			Mismatch: errors.New("got 1, want 2"),
		},
	}

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentBatchTable(results, orchestration.PresentationOptions{}, &buf)
	output := buf.String()

	for _, s := range []string{"--- Batch Summary ---", "ID", "Duration", "✅✓ 42", "< 1µs", "❌", "MISMATCH (got 1, want 2)"} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected table to contain %q, got:\n%s", s, output)
		}
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected title, header and 3 rows, got %d lines:\n%s", len(lines), output)
	}
	// Columns are aligned on the longest ID.
	col := strings.Index(lines[1], "Op")
	for i, row := range lines[2:] {
		if !strings.HasPrefix(row[col:], results[i].Job.Op) {
			t.Errorf("row %q is not aligned with the header", row)
		}
	}
}

func TestPresentBatchTable_TruncatesLongValues(t *testing.T) {
	ui.InitTheme(true)
	long := magnitude.FromBig(mustParseBig(t, "0x"+strings.Repeat("ab", 64)))
	results := []orchestration.JobResult{{
		Job:    orchestration.Job{ID: "long", Op: "mul"},
		Result: orchestration.Result{Op: "mul", Value: long},
	}}

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentBatchTable(results, orchestration.PresentationOptions{Hex: true}, &buf)
	if !strings.Contains(buf.String(), "...") {
		t.Errorf("expected long value to be elided, got:\n%s", buf.String())
	}

	buf.Reset()
	CLIResultPresenter{}.PresentBatchTable(results, orchestration.PresentationOptions{Hex: true, Verbose: true}, &buf)
	if strings.Contains(buf.String(), "...") {
		t.Errorf("verbose table should print the full value, got:\n%s", buf.String())
	}
}

func TestPresentResult(t *testing.T) {
	ui.InitTheme(true)
	res := orchestration.Result{Op: "sub", Value: magnitude.FromUint64(7)}

	var quiet bytes.Buffer
	CLIResultPresenter{}.PresentResult(res, orchestration.PresentationOptions{Quiet: true}, &quiet)
	if quiet.String() != "7\n" {
		t.Errorf("quiet result = %q, want %q", quiet.String(), "7\n")
	}

	var full bytes.Buffer
	CLIResultPresenter{}.PresentResult(res, orchestration.PresentationOptions{}, &full)
	if !strings.Contains(full.String(), "--- Result ---") {
		t.Errorf("expected full result block, got:\n%s", full.String())
	}
}

func TestHandleError(t *testing.T) {
	ui.InitTheme(true)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"timeout", context.DeadlineExceeded, apperrors.ExitErrorTimeout},
		{"canceled", context.Canceled, apperrors.ExitErrorCanceled},
		{"generic", errors.New("boom"), apperrors.ExitErrorGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if got := (CLIResultPresenter{}).HandleError(tt.err, time.Second, &buf); got != tt.want {
				t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
			}
			if buf.Len() == 0 {
				t.Error("expected an error message")
			}
		})
	}
}

func TestDisplayAllocatorStats(t *testing.T) {
	ui.InitTheme(true)
	var buf bytes.Buffer
	DisplayAllocatorStats(alloc.Stats{
		LiveWords:   256,
		PeakWords:   1024,
		Allocations: 10,
		Reuses:      4,
		Frees:       9,
		Failures:    1,
	}, &buf)
	output := buf.String()
	for _, s := range []string{"Live:         1.0 KiB", "Peak:         4.0 KiB", "Limit:        none", "Allocations:  10 (4 reused)", "Failures:     1"} {
		if !strings.Contains(output, s) {
			t.Errorf("Expected stats to contain %q, got:\n%s", s, output)
		}
	}
}
