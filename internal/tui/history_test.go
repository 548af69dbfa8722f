package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/orchestration"
)

func okResult(v uint64) orchestration.JobResult {
	return orchestration.JobResult{
		Result:   orchestration.Result{Op: "add", Value: magnitude.FromUint64(v)},
		Duration: 3 * time.Microsecond,
	}
}

func TestHistoryModel_ScrollBounds(t *testing.T) {
	h := NewHistoryModel()
	h.SetSize(60, 6) // four visible lines
	for i := range 5 {
		h.Add(fmt.Sprintf("add %d 0", i), okResult(uint64(i)), nil)
	}
	total := len(h.lines())

	h.Scroll(1000)
	if h.offset != total-4 {
		t.Errorf("offset = %d after scrolling to the top, want %d", h.offset, total-4)
	}
	if !strings.Contains(h.View(), "add 0 0") {
		t.Errorf("oldest entry not visible at the top:\n%s", h.View())
	}

	h.Scroll(-1000)
	if h.offset != 0 {
		t.Errorf("offset = %d after scrolling to the bottom, want 0", h.offset)
	}

	h.Scroll(3)
	h.Add("add 9 0", okResult(9), nil)
	if h.offset != 0 {
		t.Error("adding an entry should scroll back to the bottom")
	}
	if !strings.Contains(h.View(), "add 9 0") {
		t.Errorf("newest entry not visible:\n%s", h.View())
	}
}

func TestHistoryModel_Cap(t *testing.T) {
	h := NewHistoryModel()
	for i := range maxHistory + 10 {
		h.Add(fmt.Sprintf("add %d 0", i), okResult(1), nil)
	}
	if h.Len() != maxHistory {
		t.Errorf("Len() = %d, want %d", h.Len(), maxHistory)
	}
	if h.entries[0].input != "add 10 0" {
		t.Errorf("oldest entry = %q, want %q", h.entries[0].input, "add 10 0")
	}
}

func TestHistoryModel_Outcomes(t *testing.T) {
	h := NewHistoryModel()
	h.SetSize(80, 20)

	cmp := orchestration.JobResult{Result: orchestration.Result{Op: "cmp", Sign: -1}}
	mismatch := okResult(5)
	mismatch.Verified = true
	mismatch.Mismatch = errors.New("oracle says 6")

	h.Add("cmp 1 2", cmp, nil)
	h.Add("add 2 3", mismatch, nil)
	h.Add("oops", orchestration.JobResult{}, errors.New("bad line"))

	view := h.View()
	for _, want := range []string{"-1", "3 bits, 1 words", "oracle says 6", "! bad line"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "verified") {
		t.Error("a mismatching result must not be shown as verified")
	}
}

func TestTruncateMiddle(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"0x1234", 10, "0x1234"},
		{"0x123456789abcdef", 11, "0x12...cdef"},
		{"0x123456789abcdef", 3, "0x123456789abcdef"},
	}
	for _, tt := range tests {
		if got := truncateMiddle(tt.s, tt.n); got != tt.want {
			t.Errorf("truncateMiddle(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}
