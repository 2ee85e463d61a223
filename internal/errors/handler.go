package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies terminal color codes. It breaks the import cycle
// with cli.
type ColorProvider interface {
	Yellow() string
	Red() string
	Reset() string
}

// DefaultColorProvider provides no color codes (for non-terminal output).
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Red() string    { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// HandleEvaluationError prints a user-facing status line for a failed
// evaluation and returns the matching exit code.
//
// Parameters:
//   - err: The evaluation error. A nil error returns ExitSuccess.
//   - duration: The time spent before the failure, shown for timeouts and
//     cancellations when positive.
//   - out: The writer receiving the status line.
//   - colors: The color provider. A nil value uses DefaultColorProvider.
//
// Returns:
//   - int: The exit code matching err.
func HandleEvaluationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	switch {
	case IsInvalidArgument(err):
		fmt.Fprintf(out, "%sStatus: Invalid argument.%s %v\n", colors.Red(), colors.Reset(), err)
		return ExitErrorInvalidArg
	case IsIndexTooLarge(err):
		fmt.Fprintf(out, "%sStatus: Index too large.%s %v\n", colors.Red(), colors.Reset(), err)
		return ExitErrorInvalidArg
	case IsOverflow(err):
		fmt.Fprintf(out, "%sStatus: Overflow.%s %v\n", colors.Red(), colors.Reset(), err)
		return ExitErrorOverflow
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
		return ExitErrorCanceled
	}
	fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	return ExitErrorGeneric
}
