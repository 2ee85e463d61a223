package recurrence

import (
	"context"
	"sync"
)

// Generator streams the terms f(0), f(1), ... of a recurrence using the same
// two-slot window as Evaluate. Each call to Next costs one combination.
//
// Generator is safe for concurrent use, but interleaved callers share the
// same position in the sequence.
//
// Example:
//
//	gen := recurrence.NewGenerator(recurrence.Fibonacci())
//	for i := 0; i < 10; i++ {
//	    v, err := gen.Next(ctx)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(v)
//	}
type Generator struct {
	rec     Recurrence
	combine Combiner

	// previous and current hold f(index-1) and f(index) once started.
	previous uint64
	current  uint64
	index    int64
	started  bool

	mu sync.Mutex
}

// NewGenerator returns a generator positioned before f(0).
//
// Parameters:
//   - r: The recurrence to iterate.
//
// Returns:
//   - *Generator: A generator safe for concurrent use.
func NewGenerator(r Recurrence) *Generator {
	return &Generator{rec: r, combine: r.combiner()}
}

// Next advances the generator and returns the new current term. The first
// call returns f(0). On overflow the generator keeps its position.
//
// Parameters:
//   - ctx: The context, checked before advancing.
//
// Returns:
//   - uint64: The new current term.
//   - error: ErrOverflow or the context error.
func (g *Generator) Next(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.advance()
}

// advance moves the window forward by one term. Callers hold g.mu.
func (g *Generator) advance() (uint64, error) {
	switch {
	case !g.started:
		g.started = true
		g.index = 0
		g.current = g.rec.S0
	case g.index == 0:
		g.previous, g.current = g.rec.S0, g.rec.S1
		g.index = 1
	default:
		next, err := g.combine(g.previous, g.current)
		if err != nil {
			return 0, stepError(g.index+1, err)
		}
		g.previous = g.current
		g.current = next
		g.index++
	}
	return g.current, nil
}

// Current returns the last value produced by Next and whether Next has been
// called at all.
func (g *Generator) Current() (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current, g.started
}

// Index returns the index of the current term, or 0 before the first Next.
func (g *Generator) Index() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.index
}

// Reset rewinds the generator to before f(0).
func (g *Generator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reset()
}

func (g *Generator) reset() {
	g.previous, g.current = 0, 0
	g.index = 0
	g.started = false
}

// Skip positions the generator on f(n) and returns it. Moving backwards
// rewinds to f(0) first.
//
// Parameters:
//   - ctx: The context, polled while advancing.
//   - n: The target index, n >= 0.
//
// Returns:
//   - uint64: The value f(n).
//   - error: ErrInvalidArgument, ErrOverflow or the context error.
func (g *Generator) Skip(ctx context.Context, n int64) (uint64, error) {
	if n < 0 {
		return 0, invalidIndex(n)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.started && n < g.index {
		g.reset()
	}
	for steps := 0; !g.started || g.index < n; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if _, err := g.advance(); err != nil {
			return 0, err
		}
	}
	return g.current, nil
}

// Sequence returns the terms f(0) through f(n) inclusive.
//
// At most MaxSequenceTerms terms are produced. Generation stops with
// ErrIndexTooLarge only when that bound is actually reached, so an index
// past the overflow boundary still reports ErrOverflow.
//
// Parameters:
//   - ctx: Checked between terms.
//   - r: The recurrence to expand.
//   - n: The index of the last term, n >= 0.
//
// Returns:
//   - []uint64: The n+1 terms, in index order.
//   - error: ErrInvalidArgument, ErrOverflow, ErrIndexTooLarge or the
//     context error.
func Sequence(ctx context.Context, r Recurrence, n int64) ([]uint64, error) {
	if n < 0 {
		return nil, invalidIndex(n)
	}

	gen := NewGenerator(r)
	terms := make([]uint64, 0, min(n, MaxSequenceTerms-1)+1)
	for i := int64(0); i <= n; i++ {
		if i >= MaxSequenceTerms {
			return nil, tooLarge(n, MaxSequenceTerms-1)
		}
		v, err := gen.Next(ctx)
		if err != nil {
			return nil, err
		}
		terms = append(terms, v)
	}
	return terms, nil
}
