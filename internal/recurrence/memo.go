package recurrence

import "context"

// EvaluateMemo returns f(n) by filling a memo table keyed by index for every
// term from 0 to n. It has the same contract as Evaluate but keeps the whole
// history, so its memory grows linearly with n. It exists as an independent
// reference for the windowed evaluator.
//
// The table is bounded by MaxMemoIndex: filling it past that index fails
// with ErrIndexTooLarge. The check is made as the table grows, so a
// recurrence that overflows earlier still reports ErrOverflow.
//
// Parameters:
//   - n: The index of the term, n >= 0.
//
// Returns:
//   - uint64: The value f(n).
//   - error: ErrInvalidArgument, ErrOverflow or ErrIndexTooLarge, wrapped.
func (r Recurrence) EvaluateMemo(n int64) (uint64, error) {
	return r.EvaluateMemoContext(context.Background(), n)
}

// EvaluateMemoContext is EvaluateMemo with periodic context checks.
func (r Recurrence) EvaluateMemoContext(ctx context.Context, n int64) (uint64, error) {
	return r.memo(ctx, n, nil)
}

func (r Recurrence) memo(ctx context.Context, n int64, report ProgressReporter) (uint64, error) {
	if n < 0 {
		return 0, invalidIndex(n)
	}

	combine := r.combiner()
	memo := map[int64]uint64{0: r.S0, 1: r.S1}
	for k := int64(2); k <= n; k++ {
		if k > MaxMemoIndex {
			return 0, tooLarge(n, MaxMemoIndex)
		}
		if k%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			if report != nil {
				report(stepProgress(k, n))
			}
		}
		v, err := combine(memo[k-2], memo[k-1])
		if err != nil {
			return 0, stepError(k, err)
		}
		memo[k] = v
	}
	return memo[n], nil
}
