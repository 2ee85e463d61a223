package recurrence

import (
	"errors"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRecurrenceLaw_PropertyBased checks f(n) = f(n-1) + f(n-2) for every
// index in the representable range.
func TestRecurrenceLaw_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	rec := Fibonacci()
	properties.Property("f(n) = f(n-1) + f(n-2)", prop.ForAll(
		func(n int64) bool {
			a, errA := rec.Evaluate(n - 2)
			b, errB := rec.Evaluate(n - 1)
			c, errC := rec.Evaluate(n)
			if errA != nil || errB != nil || errC != nil {
				t.Logf("n=%d: %v %v %v", n, errA, errB, errC)
				return false
			}
			return c == a+b
		},
		gen.Int64Range(2, MaxFibonacciIndex),
	))

	properties.Property("sequence is non-decreasing", prop.ForAll(
		func(n int64) bool {
			a, _ := rec.Evaluate(n)
			b, _ := rec.Evaluate(n + 1)
			return b >= a
		},
		gen.Int64Range(0, MaxFibonacciIndex-1),
	))

	properties.TestingRun(t)
}

// TestCassinisIdentity_PropertyBased verifies Cassini's identity for the
// shifted sequence f(n) = F(n+1):
//
//	f(n-1) * f(n+1) - f(n)² = (-1)ⁿ⁺¹
func TestCassinisIdentity_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	rec := Fibonacci()
	properties.Property("Cassini's identity", prop.ForAll(
		func(n int64) bool {
			a, _ := rec.Evaluate(n - 1)
			b, _ := rec.Evaluate(n)
			c, _ := rec.Evaluate(n + 1)

			left := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(c))
			left.Sub(left, new(big.Int).Mul(new(big.Int).SetUint64(b), new(big.Int).SetUint64(b)))

			right := big.NewInt(1)
			if n%2 == 0 {
				right.Neg(right)
			}
			return left.Cmp(right) == 0
		},
		gen.Int64Range(1, MaxFibonacciIndex-1),
	))

	properties.TestingRun(t)
}

// TestStrategiesAgree_PropertyBased checks that the window and the memo table
// return the same value or the same class of error for arbitrary
// recurrences.
func TestStrategiesAgree_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("window equals memo", prop.ForAll(
		func(s0, s1, p, q uint64, n int64) bool {
			rec := New(s0, s1, p, q)
			w, errW := rec.Evaluate(n)
			m, errM := rec.EvaluateMemo(n)
			if errors.Is(errW, ErrOverflow) != errors.Is(errM, ErrOverflow) {
				return false
			}
			if errW != nil || errM != nil {
				return (errW == nil) == (errM == nil)
			}
			return w == m
		},
		gen.UInt64Range(0, 1000),
		gen.UInt64Range(0, 1000),
		gen.UInt64Range(0, 3),
		gen.UInt64Range(0, 3),
		gen.Int64Range(0, 200),
	))

	properties.Property("every index past the boundary overflows", prop.ForAll(
		func(n int64) bool {
			_, err := Fibonacci().Evaluate(n)
			return errors.Is(err, ErrOverflow)
		},
		gen.Int64Range(MaxFibonacciIndex+1, 100_000),
	))

	properties.TestingRun(t)
}
