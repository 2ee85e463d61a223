package app

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// SetupContext creates a context with a timeout applied.
// The returned cancel function should be deferred to ensure cleanup.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The maximum duration of the evaluation.
//
// Returns:
//   - context.Context: The derived context, done at the deadline.
//   - context.CancelFunc: The function releasing the timer.
func SetupContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// SetupSignals returns a context canceled on SIGINT or SIGTERM. The REPL and
// every evaluation observe it, so Ctrl+C ends a long run with exit code 130.
//
// Parameters:
//   - ctx: The parent context.
//
// Returns:
//   - context.Context: A context canceled on the first termination signal.
//   - context.CancelFunc: The function that stops signal delivery.
func SetupSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}

// SetupLifecycle combines SetupContext and SetupSignals: the returned
// context ends at the timeout or on the first termination signal.
//
// Parameters:
//   - ctx: The parent context.
//   - timeout: The maximum duration of the evaluation.
//
// Returns:
//   - context.Context: The combined context.
//   - *CancelFuncs: The cancel functions, released together by Cleanup.
func SetupLifecycle(ctx context.Context, timeout time.Duration) (context.Context, *CancelFuncs) {
	ctx, cancelTimeout := SetupContext(ctx, timeout)
	ctx, stopSignals := SetupSignals(ctx)

	return ctx, &CancelFuncs{
		CancelTimeout: cancelTimeout,
		StopSignals:   stopSignals,
	}
}

// CancelFuncs holds the cancel functions created by SetupLifecycle.
type CancelFuncs struct {
	CancelTimeout context.CancelFunc
	StopSignals   context.CancelFunc
}

// Cleanup releases both contexts. Either function may be nil.
func (c *CancelFuncs) Cleanup() {
	if c.StopSignals != nil {
		c.StopSignals()
	}
	if c.CancelTimeout != nil {
		c.CancelTimeout()
	}
}
