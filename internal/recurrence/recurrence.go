// Package recurrence evaluates order-2 linear recurrences such as the
// Fibonacci sequence f(0)=1, f(1)=1, f(n)=f(n-1)+f(n-2).
//
// The central evaluator advances a two-slot rolling window from the seed pair
// up to the requested index. It runs in O(n) time with O(1) auxiliary state,
// never recurses and never keeps more than the last two terms. A memoized
// table evaluator with the same contract is provided as an independent
// reference.
//
// Values are fixed-width uint64. Any term that does not fit is reported as
// ErrOverflow instead of wrapping around.
package recurrence

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
)

var (
	// ErrInvalidArgument is returned when the requested index is negative or
	// cannot be represented as a non-negative integer.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOverflow is returned when a term exceeds the uint64 range.
	ErrOverflow = errors.New("overflow")
	// ErrIndexTooLarge is returned by the strategies whose memory grows with
	// n (the memo table, Sequence) when n is past their ceiling. It is not an
	// invalid argument: the windowed evaluator still accepts that index.
	ErrIndexTooLarge = errors.New("index too large")
)

const (
	// MaxMemoIndex is the largest index the memo table evaluates. The table
	// holds one entry per index, about 60 bytes each.
	MaxMemoIndex = 100_000
	// MaxSequenceTerms bounds the number of terms a single Sequence call
	// returns, so indices up to MaxSequenceTerms-1 are accepted.
	MaxSequenceTerms = 10_000
)

// MaxFibonacciIndex is the largest index whose value fits in a uint64 for the
// Fibonacci instance (seeds 1, 1): f(92) = 12200160415121876738.
const MaxFibonacciIndex = 92

// cancelCheckInterval is the number of window advances between two context
// checks. Recurrences that never overflow (zero seeds, zero coefficients) can
// otherwise loop for as long as n is large.
const cancelCheckInterval = 1 << 16

// Combiner computes the next term from the two previous terms of the window.
// previous is f(k-2) and current is f(k-1).
type Combiner func(previous, current uint64) (uint64, error)

// Add is the Fibonacci combination function: previous + current.
func Add(previous, current uint64) (uint64, error) {
	sum, carry := bits.Add64(previous, current, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}

// Linear returns the combination function p*current + q*previous, the general
// form of a homogeneous order-2 linear recurrence with non-negative
// coefficients. Linear(1, 1) behaves like Add.
//
// Parameters:
//   - p: The coefficient of f(n-1).
//   - q: The coefficient of f(n-2).
//
// Returns:
//   - Combiner: A combination function reporting ErrOverflow when a product
//     or the sum exceeds 64 bits.
func Linear(p, q uint64) Combiner {
	if p == 1 && q == 1 {
		return Add
	}
	return func(previous, current uint64) (uint64, error) {
		hi, a := bits.Mul64(p, current)
		if hi != 0 {
			return 0, ErrOverflow
		}
		hi, b := bits.Mul64(q, previous)
		if hi != 0 {
			return 0, ErrOverflow
		}
		return Add(a, b)
	}
}

// Recurrence describes an order-2 recurrence: two seed values and the
// function combining f(k-2) and f(k-1) into f(k).
type Recurrence struct {
	// S0 is f(0).
	S0 uint64
	// S1 is f(1).
	S1 uint64
	// Combine produces f(k) from f(k-2) and f(k-1). Nil means Add.
	Combine Combiner
}

// Fibonacci returns the recurrence f(0)=1, f(1)=1, f(n)=f(n-1)+f(n-2).
func Fibonacci() Recurrence {
	return Recurrence{S0: 1, S1: 1, Combine: Add}
}

// New builds the recurrence f(0)=s0, f(1)=s1, f(n)=p*f(n-1)+q*f(n-2).
//
// Parameters:
//   - s0, s1: The seeds f(0) and f(1).
//   - p, q: The coefficients of f(n-1) and f(n-2).
//
// Returns:
//   - Recurrence: The recurrence. p = q = 1 uses Add directly.
func New(s0, s1, p, q uint64) Recurrence {
	return Recurrence{S0: s0, S1: s1, Combine: Linear(p, q)}
}

func (r Recurrence) combiner() Combiner {
	if r.Combine == nil {
		return Add
	}
	return r.Combine
}

// Evaluate returns f(n) by advancing the two-slot window from the seeds.
// It fails with ErrInvalidArgument when n is negative and with ErrOverflow
// when a term up to f(n) does not fit in 64 bits.
//
// Parameters:
//   - n: The index of the term.
//
// Returns:
//   - uint64: The value f(n).
//   - error: ErrInvalidArgument or ErrOverflow, wrapped with the index.
func (r Recurrence) Evaluate(n int64) (uint64, error) {
	return r.EvaluateContext(context.Background(), n)
}

// EvaluateContext is Evaluate with a context that is polled every few
// thousand steps.
func (r Recurrence) EvaluateContext(ctx context.Context, n int64) (uint64, error) {
	return r.window(ctx, n, nil)
}

func (r Recurrence) window(ctx context.Context, n int64, report ProgressReporter) (uint64, error) {
	if n < 0 {
		return 0, invalidIndex(n)
	}
	if n == 0 {
		return r.S0, nil
	}
	if n == 1 {
		return r.S1, nil
	}

	combine := r.combiner()
	previous, current := r.S0, r.S1
	for k := int64(2); k <= n; k++ {
		if k%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			if report != nil {
				report(stepProgress(k, n))
			}
		}
		next, err := combine(previous, current)
		if err != nil {
			return 0, stepError(k, err)
		}
		// previous must take current before current is replaced.
		previous = current
		current = next
	}
	return current, nil
}

func invalidIndex(n int64) error {
	return fmt.Errorf("%w: index %d is negative", ErrInvalidArgument, n)
}

func tooLarge(n, limit int64) error {
	return fmt.Errorf("%w: %d > %d", ErrIndexTooLarge, n, limit)
}

func stepError(k int64, err error) error {
	if errors.Is(err, ErrOverflow) {
		return fmt.Errorf("f(%d) does not fit in 64 bits: %w", k, err)
	}
	return fmt.Errorf("combining terms for f(%d): %w", k, err)
}
