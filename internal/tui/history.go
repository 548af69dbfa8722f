package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/orchestration"
)

// maxHistory bounds the number of evaluations kept on screen.
const maxHistory = 200

// historyEntry is one evaluated line.
type historyEntry struct {
	input  string
	result orchestration.JobResult
	err    error
}

// HistoryModel is the scrollable list of evaluations, newest at the bottom.
type HistoryModel struct {
	entries []historyEntry
	// offset is the number of rendered lines hidden below the view.
	offset int
	hex    bool
	width  int
	height int
}

// NewHistoryModel creates an empty history.
func NewHistoryModel() HistoryModel {
	return HistoryModel{}
}

// SetSize updates the panel dimensions, borders included.
func (h *HistoryModel) SetSize(w, height int) {
	h.width, h.height = w, height
}

// SetHex switches the radix used to render results.
func (h *HistoryModel) SetHex(hex bool) { h.hex = hex }

// Add appends an evaluation and scrolls back to the bottom. err reports a
// line that could not be submitted; failures of the evaluation itself are
// carried in result.
func (h *HistoryModel) Add(input string, result orchestration.JobResult, err error) {
	h.entries = append(h.entries, historyEntry{input: input, result: result, err: err})
	if len(h.entries) > maxHistory {
		h.entries = h.entries[len(h.entries)-maxHistory:]
	}
	h.offset = 0
}

// Clear drops every entry.
func (h *HistoryModel) Clear() {
	h.entries = nil
	h.offset = 0
}

// Len returns the number of entries.
func (h *HistoryModel) Len() int { return len(h.entries) }

// Scroll moves the view by delta lines; positive values go back in time.
func (h *HistoryModel) Scroll(delta int) {
	hidden := max(len(h.lines())-h.innerHeight(), 0)
	h.offset = min(max(h.offset+delta, 0), hidden)
}

func (h HistoryModel) innerHeight() int { return max(h.height-2, 1) }
func (h HistoryModel) innerWidth() int  { return max(h.width-4, 16) }

// lines renders every entry, two or three lines each.
func (h HistoryModel) lines() []string {
	var out []string
	for _, e := range h.entries {
		out = append(out, promptStyle.Render("› ")+exprStyle.Render(e.input))
		out = append(out, h.renderOutcome(e)...)
	}
	return out
}

func (h HistoryModel) renderOutcome(e historyEntry) []string {
	jr := e.result
	err := e.err
	if err == nil {
		err = jr.Err
	}
	if err != nil {
		return []string{"  " + errorStyle.Render("! "+err.Error())}
	}

	value := jr.Result.Format(h.hex)
	limit := h.innerWidth() - 4
	if h.hex {
		value = truncateMiddle(value, limit)
	} else if !jr.Result.IsComparison() {
		value = format.FormatDigits(value, limit/2)
	}
	out := []string{"  " + dimStyle.Render("= ") + resultStyle.Render(value)}

	detail := format.FormatExecutionDuration(jr.Duration)
	if !jr.Result.IsComparison() {
		detail = fmt.Sprintf("%d bits, %d words, %s", jr.Result.Value.BitLen(), jr.Result.Value.Len(), detail)
	}
	switch {
	case jr.Mismatch != nil:
		detail += "  " + errorStyle.Render("✗ "+jr.Mismatch.Error())
	case jr.Verified:
		detail += "  " + verifiedStyle.Render("✓ verified")
	}
	return append(out, "    "+dimStyle.Render(detail))
}

// truncateMiddle shortens s to at most n runes by eliding its middle.
func truncateMiddle(s string, n int) string {
	if n < 5 || len(s) <= n {
		return s
	}
	edge := (n - 3) / 2
	return s[:edge] + "..." + s[len(s)-edge:]
}

// View renders the panel.
func (h HistoryModel) View() string {
	lines := h.lines()
	if len(lines) == 0 {
		lines = []string{dimStyle.Render("Type an operation, e.g. mul 0xffffffff 12345, then press enter.")}
	}
	end := len(lines) - h.offset
	start := max(end-h.innerHeight(), 0)
	return panelStyle.
		Width(max(h.width-2, 0)).
		Height(h.innerHeight()).
		Render(strings.Join(lines[start:end], "\n"))
}
