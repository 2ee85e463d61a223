package recurrence

// Options configures an evaluation.
type Options struct {
	// Recurrence is the recurrence to evaluate. Nil means Fibonacci.
	Recurrence *Recurrence
}

// normalizeOptions returns the recurrence to evaluate, falling back to the
// Fibonacci instance.
func normalizeOptions(opts Options) Recurrence {
	if opts.Recurrence == nil {
		return Fibonacci()
	}
	return *opts.Recurrence
}
