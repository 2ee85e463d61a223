// Package apperrors defines the structured error types of the application and
// the mapping from errors to process exit codes.
//
// All wrapping types implement Unwrap so that errors.Is and errors.As reach
// the recurrence sentinels (ErrInvalidArgument, ErrOverflow) and the context
// errors through any number of layers.
package apperrors

import (
	"context"
	"errors"
	"fmt"

	"github.com/agbru/fibwindow/internal/recurrence"
)

// Application exit codes.
const (
	ExitSuccess         = 0   // Successful execution.
	ExitErrorGeneric    = 1   // Unclassified failure.
	ExitErrorTimeout    = 2   // The -timeout deadline was reached.
	ExitErrorMismatch   = 3   // Strategies disagreed on the result.
	ExitErrorConfig     = 4   // Invalid flags, environment or config file.
	ExitErrorInvalidArg = 5   // The requested index is invalid or past a limit.
	ExitErrorOverflow   = 6   // The requested term does not fit in 64 bits.
	ExitErrorCanceled   = 130 // Interrupted (e.g., SIGINT).
)

// ConfigError represents invalid user configuration. The application cannot
// proceed when one is returned.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: The format string for the error message.
//   - a: The arguments for the format string.
//
// Returns:
//   - error: A new ConfigError instance.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// EvaluationError wraps a failed evaluation together with the strategy that
// produced it.
type EvaluationError struct {
	// Algorithm is the registry name of the strategy, if known.
	Algorithm string
	// N is the requested index.
	N int64
	// Cause is the underlying error.
	Cause error
}

// Error returns the cause message prefixed with the strategy name.
func (e EvaluationError) Error() string {
	if e.Algorithm == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.Algorithm, e.Cause)
}

// Unwrap returns the underlying cause.
func (e EvaluationError) Unwrap() error { return e.Cause }

// NewEvaluationError wraps cause with the strategy and index that produced
// it.
//
// Parameters:
//   - algorithm: The registry name of the strategy (may be empty).
//   - n: The requested index.
//   - cause: The underlying error.
//
// Returns:
//   - error: A new EvaluationError, or nil if cause is nil.
func NewEvaluationError(algorithm string, n int64, cause error) error {
	if cause == nil {
		return nil
	}
	return EvaluationError{Algorithm: algorithm, N: n, Cause: cause}
}

// ServerError represents errors that occur in the HTTP server component.
type ServerError struct {
	// Message is a descriptive message about the server error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

// Error combines the message and the cause if present.
func (e ServerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e ServerError) Unwrap() error { return e.Cause }

// NewServerError creates a new ServerError with a message and optional cause.
//
// Parameters:
//   - message: A description of the error context.
//   - cause: The underlying error that occurred (can be nil).
//
// Returns:
//   - error: A new ServerError instance.
func NewServerError(message string, cause error) error {
	return ServerError{Message: message, Cause: cause}
}

// ValidationError reports a request parameter that failed validation.
type ValidationError struct {
	// Field is the name of the offending field.
	Field string
	// Message describes why validation failed.
	Message string
	// Value is the invalid value (optional).
	Value any
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string, value any) error {
	return ValidationError{Field: field, Message: message, Value: value}
}

// WrapError wraps err with a formatted context message, preserving the chain
// for errors.Is and errors.As.
//
// Parameters:
//   - err: The error to wrap.
//   - format: The format string for the context message.
//   - args: The arguments for the format string.
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

// IsContextError reports whether err is a cancellation or deadline error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsInvalidArgument reports whether err stems from an index that is negative
// or not an integer.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, recurrence.ErrInvalidArgument)
}

// IsOverflow reports whether err stems from a term exceeding 64 bits.
func IsOverflow(err error) bool {
	return errors.Is(err, recurrence.ErrOverflow)
}

// IsIndexTooLarge reports whether err stems from an index past the ceiling
// of a strategy or of a configured limit.
func IsIndexTooLarge(err error) bool {
	return errors.Is(err, recurrence.ErrIndexTooLarge)
}

// ExitCodeFor maps err to the process exit code. Config errors win over the
// evaluation sentinels, and context errors map to the timeout and canceled
// codes.
//
// Parameters:
//   - err: The error to classify (may be nil).
//
// Returns:
//   - int: One of the Exit* constants.
func ExitCodeFor(err error) int {
	var cfgErr ConfigError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case IsInvalidArgument(err), IsIndexTooLarge(err):
		return ExitErrorInvalidArg
	case IsOverflow(err):
		return ExitErrorOverflow
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
