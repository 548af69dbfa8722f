package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/magcalc/internal/ui"
)

// Styles of the calculator screen, rebuilt from the ui theme by
// initTUIStyles.
var (
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	dimStyle         lipgloss.Style
	accentStyle      lipgloss.Style
	promptStyle      lipgloss.Style
	exprStyle        lipgloss.Style
	resultStyle      lipgloss.Style
	errorStyle       lipgloss.Style
	verifiedStyle    lipgloss.Style
	metricLabelStyle lipgloss.Style
	metricValueStyle lipgloss.Style
	footerKeyStyle   lipgloss.Style
	footerDescStyle  lipgloss.Style
	cpuSparkStyle    lipgloss.Style
	memSparkStyle    lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme. Run calls it
// again after the theme has been chosen.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)
	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Background(t.Bg).
		Padding(0, 1)

	titleStyle = fg(t.Accent).Bold(true)
	dimStyle = fg(t.Dim)
	accentStyle = fg(t.Accent)
	promptStyle = fg(t.Accent).Bold(true)
	exprStyle = fg(t.Info)
	resultStyle = fg(t.Text).Bold(true)
	errorStyle = fg(t.Error)
	verifiedStyle = fg(t.Success)
	metricLabelStyle = fg(t.Dim)
	metricValueStyle = fg(t.Accent).Bold(true)
	footerKeyStyle = fg(t.Accent).Bold(true)
	footerDescStyle = fg(t.Dim)
	cpuSparkStyle = fg(t.Accent)
	memSparkStyle = fg(t.Warning)
}
