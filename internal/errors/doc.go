// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// calculation, runtime exceptions, out-of-memory) and for carrying the
// underlying cause.
//
// Runtime exceptions (IndexOutOfBoundsError, NullPointerError,
// ArithmeticError) are what a native method raises back into the calling
// runtime; MemoryError is fatal for the operation that hit it.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Wrapper types implement the Unwrap() method to support errors.Is() and errors.As().
package apperrors
