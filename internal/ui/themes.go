package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme pairs the ANSI escape codes used by line-oriented output with the
// lipgloss colors of the TUI.
type Theme struct {
	Name string

	// ANSI escape codes, empty when colors are disabled.
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string

	TUI TUITheme
}

// TUITheme holds the lipgloss colors of the TUI panels.
type TUITheme struct {
	Bg      lipgloss.TerminalColor
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// ColorTheme is the default: cyan accents on a dark background.
	ColorTheme = Theme{
		Name:      "color",
		Primary:   "\033[38;5;44m",
		Secondary: "\033[38;5;244m",
		Success:   "\033[38;5;78m",
		Warning:   "\033[38;5;221m",
		Error:     "\033[38;5;203m",
		Info:      "\033[38;5;176m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		TUI: TUITheme{
			Bg:      lipgloss.Color("#0B0F14"),
			Text:    lipgloss.Color("#D8DEE9"),
			Border:  lipgloss.Color("#2AA198"),
			Accent:  lipgloss.Color("#35C9C0"),
			Success: lipgloss.Color("#7FD36B"),
			Warning: lipgloss.Color("#F2C94C"),
			Error:   lipgloss.Color("#F0625A"),
			Dim:     lipgloss.Color("#5C6773"),
			Info:    lipgloss.Color("#C08CE0"),
		},
	}

	// NoColorTheme renders plain text. lipgloss.NoColor keeps the
	// terminal's own colors.
	NoColorTheme = Theme{
		Name: "none",
		TUI: TUITheme{
			Bg:      lipgloss.NoColor{},
			Text:    lipgloss.NoColor{},
			Border:  lipgloss.NoColor{},
			Accent:  lipgloss.NoColor{},
			Success: lipgloss.NoColor{},
			Warning: lipgloss.NoColor{},
			Error:   lipgloss.NoColor{},
			Dim:     lipgloss.NoColor{},
			Info:    lipgloss.NoColor{},
		},
	}

	themeMu      sync.RWMutex
	currentTheme = ColorTheme
)

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// GetCurrentTUITheme returns the TUI colors of the active theme.
func GetCurrentTUITheme() TUITheme {
	return GetCurrentTheme().TUI
}

// SetCurrentTheme replaces the active theme; tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMu.Lock()
	defer themeMu.Unlock()
	currentTheme = t
}

// InitTheme selects NoColorTheme when noColor is set or NO_COLOR is present
// in the environment (https://no-color.org/), ColorTheme otherwise.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); set || noColor {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(ColorTheme)
}
