package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/magcalc/internal/format"
)

// HeaderModel renders the top bar: title, session time and the settings
// that shape the next evaluation.
type HeaderModel struct {
	startTime time.Time
	version   string
	threshold int
	hex       bool
	verify    bool
	width     int
}

// NewHeaderModel creates a header for a session starting now.
func NewHeaderModel(version string, threshold int, verify bool) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		threshold: threshold,
		verify:    verify,
	}
}

// SetHex records the output radix.
func (h *HeaderModel) SetHex(hex bool) { h.hex = hex }

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) { h.width = w }

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "magcalc"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	radix := "dec"
	if h.hex {
		radix = "hex"
	}
	verify := "off"
	if h.verify {
		verify = "on"
	}

	pipe := dimStyle.Render(" | ")
	left := titleStyle.Render(titleText) + pipe +
		accentStyle.Render("Session: "+format.FormatExecutionDuration(time.Since(h.startTime).Round(time.Second)))
	right := dimStyle.Render(fmt.Sprintf("karatsuba ≥ %d words  output %s  verify %s", h.threshold, radix, verify))

	gap := max(h.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return headerStyle.Width(h.width).Render(left + strings.Repeat(" ", gap) + right)
}
