// Package ui holds the color themes shared by the CLI and the TUI. Output
// code asks for colors by role (ColorRed for errors, ColorDim for hints)
// so that --no-color and NO_COLOR switch everything off in one place.
package ui
