package recurrence

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGeneratorMatchesEvaluate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gen := NewGenerator(Fibonacci())

	if _, started := gen.Current(); started {
		t.Fatal("fresh generator reports a current value")
	}

	for n := int64(0); n <= MaxFibonacciIndex; n++ {
		got, err := gen.Next(ctx)
		if err != nil {
			t.Fatalf("Next at %d: %v", n, err)
		}
		want, _ := Fibonacci().Evaluate(n)
		if got != want {
			t.Fatalf("term %d: got %d, want %d", n, got, want)
		}
		if gen.Index() != n {
			t.Fatalf("Index() = %d, want %d", gen.Index(), n)
		}
	}
}

func TestGeneratorOverflowKeepsPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gen := NewGenerator(Fibonacci())
	if _, err := gen.Skip(ctx, MaxFibonacciIndex); err != nil {
		t.Fatalf("Skip: %v", err)
	}

	if _, err := gen.Next(ctx); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if gen.Index() != MaxFibonacciIndex {
		t.Errorf("Index() = %d after overflow, want %d", gen.Index(), MaxFibonacciIndex)
	}
	if v, _ := gen.Current(); v != 12200160415121876738 {
		t.Errorf("Current() = %d after overflow", v)
	}
}

func TestGeneratorSkipAndReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gen := NewGenerator(Fibonacci())

	tests := []struct {
		n    int64
		want uint64
	}{
		{0, 1}, {10, 89}, {20, 10946}, {5, 8}, {5, 8}, {1, 1},
	}
	for _, tt := range tests {
		got, err := gen.Skip(ctx, tt.n)
		if err != nil {
			t.Fatalf("Skip(%d): %v", tt.n, err)
		}
		if got != tt.want || gen.Index() != tt.n {
			t.Errorf("Skip(%d) = %d at index %d, want %d", tt.n, got, gen.Index(), tt.want)
		}
	}

	if _, err := gen.Skip(ctx, -3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Skip(-3): expected ErrInvalidArgument, got %v", err)
	}

	gen.Reset()
	if _, started := gen.Current(); started {
		t.Error("Reset did not rewind the generator")
	}
	if v, _ := gen.Next(ctx); v != 1 {
		t.Errorf("first term after Reset = %d, want 1", v)
	}
}

func TestGeneratorCancellation(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(Fibonacci())
	if _, err := gen.Next(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Next: expected context.Canceled, got %v", err)
	}
	if _, err := gen.Skip(ctx, 10); !errors.Is(err, context.Canceled) {
		t.Errorf("Skip: expected context.Canceled, got %v", err)
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	terms, err := Sequence(ctx, Fibonacci(), 10)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	want := []uint64{1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89}
	if len(terms) != len(want) {
		t.Fatalf("got %d terms, want %d", len(terms), len(want))
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("term %d = %d, want %d", i, terms[i], want[i])
		}
	}

	if terms, err := Sequence(ctx, Fibonacci(), 0); err != nil || len(terms) != 1 || terms[0] != 1 {
		t.Errorf("Sequence(0) = %v, %v", terms, err)
	}
	if _, err := Sequence(ctx, Fibonacci(), -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Sequence(-1): expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Sequence(ctx, Fibonacci(), MaxFibonacciIndex+1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Sequence(93): expected ErrOverflow, got %v", err)
	}
}

func TestSequenceHugeIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	if _, err := Sequence(ctx, Fibonacci(), math.MaxInt64); !errors.Is(err, ErrOverflow) {
		t.Errorf("Sequence(MaxInt64) for Fibonacci: expected ErrOverflow, got %v", err)
	}

	constant := New(0, 0, 1, 1)
	if _, err := Sequence(ctx, constant, math.MaxInt64); !errors.Is(err, ErrIndexTooLarge) {
		t.Errorf("Sequence(MaxInt64) for zeros: expected ErrIndexTooLarge, got %v", err)
	}
	if _, err := Sequence(ctx, constant, MaxSequenceTerms); !errors.Is(err, ErrIndexTooLarge) {
		t.Errorf("Sequence(MaxSequenceTerms): expected ErrIndexTooLarge, got %v", err)
	}
	terms, err := Sequence(ctx, constant, MaxSequenceTerms-1)
	if err != nil || len(terms) != MaxSequenceTerms {
		t.Errorf("Sequence(MaxSequenceTerms-1) = %d terms, %v; want %d terms", len(terms), err, MaxSequenceTerms)
	}
}
