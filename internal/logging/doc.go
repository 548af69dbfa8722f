// Package logging provides a unified logging interface for magcalc.
// It abstracts the underlying logging implementation, allowing consistent logging
// across components while supporting multiple backends (zerolog and the
// standard library log package).
package logging
