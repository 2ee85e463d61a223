package recurrence

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recurrence_evaluations_total",
			Help: "The total number of recurrence evaluations processed",
		},
		[]string{"algorithm", "status"},
	)
	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recurrence_evaluation_duration_seconds",
			Help:    "The duration of recurrence evaluations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-7, 10, 8),
		},
		[]string{"algorithm"},
	)
)

// Evaluator is the interface the rest of the application uses to compute a
// term of a recurrence. Implementations are safe for concurrent use.
type Evaluator interface {
	// Evaluate returns f(n) for the recurrence in opts. Progress updates
	// tagged with evalIndex are sent to progressChan when it is not nil.
	Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, evalIndex int, n int64, opts Options) (uint64, error)

	// Name returns the display name of the strategy (e.g., "Linear Window").
	Name() string
}

// coreEvaluator is a bare evaluation strategy, without instrumentation.
type coreEvaluator interface {
	EvaluateCore(ctx context.Context, reporter ProgressReporter, r Recurrence, n int64) (uint64, error)
	Name() string
}

// RecurrenceEvaluator decorates a coreEvaluator with the cross-cutting
// concerns shared by every strategy: tracing, Prometheus metrics and debug
// logging.
type RecurrenceEvaluator struct {
	core coreEvaluator
}

// NewEvaluator wraps core into an Evaluator. It panics if core is nil.
func NewEvaluator(core coreEvaluator) Evaluator {
	if core == nil {
		panic("recurrence: the `coreEvaluator` implementation cannot be nil")
	}
	return &RecurrenceEvaluator{core: core}
}

// Name delegates to the wrapped strategy.
func (e *RecurrenceEvaluator) Name() string {
	return e.core.Name()
}

// Evaluate runs the wrapped strategy and records its outcome.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - progressChan: The channel for progress updates (may be nil).
//   - evalIndex: The index of this evaluator in the progress display.
//   - n: The index of the term.
//   - opts: The options carrying the recurrence. A nil recurrence is the
//     Fibonacci default.
//
// Returns:
//   - uint64: The value f(n).
//   - error: The strategy error or the context error.
func (e *RecurrenceEvaluator) Evaluate(ctx context.Context, progressChan chan<- ProgressUpdate, evalIndex int, n int64, opts Options) (result uint64, err error) {
	tracer := otel.Tracer("recurrence")
	ctx, span := tracer.Start(ctx, "Evaluate")
	defer span.End()

	algoName := e.core.Name()
	span.SetAttributes(
		attribute.String("recurrence.algorithm", algoName),
		attribute.Int64("recurrence.n", n),
	)

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := StatusOf(err)
		evaluationsTotal.WithLabelValues(algoName, status).Inc()
		evaluationDuration.WithLabelValues(algoName).Observe(duration)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
		}

		log.Debug().
			Str("algo", algoName).
			Int64("n", n).
			Float64("duration", duration).
			Str("status", status).
			Msg("evaluation completed")
	}()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	reporter := channelReporter(progressChan, evalIndex)
	result, err = e.core.EvaluateCore(ctx, reporter, normalizeOptions(opts), n)
	if err == nil {
		reporter(1.0)
	}
	return result, err
}

// StatusOf classifies an evaluation error into a short label suitable for
// metrics and logs.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

// WindowEvaluator is the linearized strategy: a two-slot rolling window.
type WindowEvaluator struct{}

// Name returns the display name of the windowed strategy.
func (WindowEvaluator) Name() string {
	return "Linear Window (O(n) time, O(1) space)"
}

// EvaluateCore advances the window up to n.
func (WindowEvaluator) EvaluateCore(ctx context.Context, reporter ProgressReporter, r Recurrence, n int64) (uint64, error) {
	return r.window(ctx, n, reporter)
}

// MemoEvaluator is the reference strategy backed by a full memo table.
type MemoEvaluator struct{}

// Name returns the display name of the memoized strategy.
func (MemoEvaluator) Name() string {
	return "Memoized Table (O(n) time, O(n) space)"
}

// EvaluateCore fills the memo table up to n.
func (MemoEvaluator) EvaluateCore(ctx context.Context, reporter ProgressReporter, r Recurrence, n int64) (uint64, error) {
	return r.memo(ctx, n, reporter)
}
