// Package service exposes recurrence evaluation behind a small interface
// shared by the HTTP server and the tests that mock it.
package service

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"fmt"

	"github.com/agbru/fibwindow/internal/recurrence"
)

// MaxSequenceTerms bounds the length of a single Sequence call.
const MaxSequenceTerms = recurrence.MaxSequenceTerms

// ErrMaxValueExceeded is returned when n is above the configured limit. It
// wraps recurrence.ErrIndexTooLarge.
var ErrMaxValueExceeded = fmt.Errorf("maximum n value exceeded: %w", recurrence.ErrIndexTooLarge)

// Service evaluates recurrences.
type Service interface {
	// Evaluate returns f(n) computed by the named strategy.
	Evaluate(ctx context.Context, algoName string, n int64, opts recurrence.Options) (uint64, error)
	// Sequence returns f(0) through f(n).
	Sequence(ctx context.Context, n int64, opts recurrence.Options) ([]uint64, error)
	// Algorithms returns the registered strategy names.
	Algorithms() []string
}

// EvaluatorService implements Service on top of an EvaluatorFactory.
type EvaluatorService struct {
	factory recurrence.EvaluatorFactory
	maxN    int64
}

var _ Service = (*EvaluatorService)(nil)

// NewEvaluatorService creates a service.
//
// Parameters:
//   - factory: The strategy registry.
//   - maxN: The largest accepted index. 0 disables the limit.
//
// Returns:
//   - *EvaluatorService: The service.
func NewEvaluatorService(factory recurrence.EvaluatorFactory, maxN int64) *EvaluatorService {
	return &EvaluatorService{factory: factory, maxN: maxN}
}

func (s *EvaluatorService) checkLimit(n int64, limit int64) error {
	if limit > 0 && n > limit {
		return fmt.Errorf("%w: %d > %d", ErrMaxValueExceeded, n, limit)
	}
	return nil
}

// Evaluate checks n against the limit, then runs the strategy without
// progress reporting.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - algoName: The registry name of the strategy.
//   - n: The index to evaluate.
//   - opts: The evaluation options carrying the recurrence.
//
// Returns:
//   - uint64: The term f(n).
//   - error: ErrMaxValueExceeded, an unknown strategy, or the evaluation
//     error.
func (s *EvaluatorService) Evaluate(ctx context.Context, algoName string, n int64, opts recurrence.Options) (uint64, error) {
	if err := s.checkLimit(n, s.maxN); err != nil {
		return 0, err
	}
	ev, err := s.factory.Get(algoName)
	if err != nil {
		return 0, err
	}
	return ev.Evaluate(ctx, nil, 0, n, opts)
}

// Sequence checks n against both the configured limit and MaxSequenceTerms,
// then returns f(0) through f(n).
func (s *EvaluatorService) Sequence(ctx context.Context, n int64, opts recurrence.Options) ([]uint64, error) {
	if err := s.checkLimit(n, s.maxN); err != nil {
		return nil, err
	}
	if n >= MaxSequenceTerms {
		return nil, fmt.Errorf("%w: %d > %d", recurrence.ErrIndexTooLarge, n, MaxSequenceTerms-1)
	}
	r := recurrence.Fibonacci()
	if opts.Recurrence != nil {
		r = *opts.Recurrence
	}
	return recurrence.Sequence(ctx, r, n)
}

// Algorithms lists the factory's strategies in name order.
func (s *EvaluatorService) Algorithms() []string {
	return s.factory.List()
}
