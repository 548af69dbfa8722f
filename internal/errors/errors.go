package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorMismatch = 3   // Indicates a result disagreed with the reference oracle.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrDivisionByZero is returned when a division or remainder is requested
// with a zero divisor.
var ErrDivisionByZero = errors.New("division by zero")

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError encapsulates a failed magnitude operation while
// preserving the original cause, together with the name of the operation.
type CalculationError struct {
	// Op is the operation that failed (e.g. "multiply").
	Op string
	// Cause is the underlying error that triggered this calculation error.
	Cause error
}

// Error returns the error message from the underlying cause, prefixed with
// the operation name when one is set.
func (e CalculationError) Error() string {
	if e.Op == "" {
		return e.Cause.Error()
	}
	return e.Op + ": " + e.Cause.Error()
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError represents an operation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// MemoryError is the out-of-memory condition raised by the word allocator
// when an allocation still cannot be satisfied after a collection pass.
// Quantities are expressed in words.
type MemoryError struct {
	// Requested is the number of words the operation needed.
	Requested uint64
	// Available is the number of words left under the limit.
	Available uint64
	// Limit is the configured allocator limit in words.
	Limit uint64
}

// Error returns a formatted message describing the memory error.
func (e MemoryError) Error() string {
	return fmt.Sprintf("out of memory: requested %d words, available %d words (limit: %d)", e.Requested, e.Available, e.Limit)
}

// IndexOutOfBoundsError is raised when a byte range handed to magnitude
// construction does not lie within its source buffer.
type IndexOutOfBoundsError struct {
	// Index is the first offending index.
	Index int
	// Length is the length of the source buffer.
	Length int
}

// Error returns the runtime's index-out-of-bounds message.
func (e IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("Index %d out of bounds for length %d", e.Index, e.Length)
}

// NullPointerError is raised when an operation dereferences an absent
// object, such as a null source array.
type NullPointerError struct {
	// Message describes what was dereferenced.
	Message string
}

// Error returns the message of the NullPointerError.
func (e NullPointerError) Error() string { return e.Message }

// ArithmeticError is raised by operations whose operands are outside their
// mathematical domain. It wraps the specific cause, e.g. ErrDivisionByZero.
type ArithmeticError struct {
	// Cause is the specific arithmetic failure.
	Cause error
}

// Error returns the message of the underlying cause.
func (e ArithmeticError) Error() string { return e.Cause.Error() }

// Unwrap returns the underlying cause.
func (e ArithmeticError) Unwrap() error { return e.Cause }

// LinkError reports that no native method matches a requested name and
// descriptor.
type LinkError struct {
	// Name is the requested method name.
	Name string
	// Descriptor is the requested method descriptor.
	Descriptor string
}

// Error returns a formatted message describing the unresolved method.
func (e LinkError) Error() string {
	return fmt.Sprintf("unsatisfied link: no native method %s%s", e.Name, e.Descriptor)
}

// StackError reports an operand stack that does not hold what a native
// method expects, either because it is empty or because a value has the
// wrong kind.
type StackError struct {
	// Expected names the kind of value the method tried to pop.
	Expected string
	// Found names the kind of value on the stack, or "empty".
	Found string
}

// Error returns a formatted message describing the stack mismatch.
func (e StackError) Error() string {
	return fmt.Sprintf("operand stack: expected %s, found %s", e.Expected, e.Found)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsRuntimeException reports whether err is one of the exceptions a native
// method may raise to its caller (index out of bounds, null pointer or
// arithmetic), as opposed to a fatal condition such as out-of-memory.
func IsRuntimeException(err error) bool {
	var (
		idx   IndexOutOfBoundsError
		null  NullPointerError
		arith ArithmeticError
	)
	return errors.As(err, &idx) || errors.As(err, &null) || errors.As(err, &arith)
}

// ExitCode maps an error to the process exit status.
//
// Parameters:
//   - err: The error returned by a command, or nil.
//
// Returns:
//   - int: One of the Exit* constants.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var (
		cfgErr     ConfigError
		timeoutErr TimeoutError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}
