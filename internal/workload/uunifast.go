// Package workload generates random, reproducible task sets for exercising
// the analysis engine.
package workload

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

var ErrInvalidArgument = errors.New("invalid generator argument")

// ArgumentError reports a generator argument outside its valid range.
type ArgumentError struct {
	Arg   string
	Value float64
	Msg   string
}

func (e *ArgumentError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s %s, got %g", ErrInvalidArgument, e.Arg, e.Msg, e.Value)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArgument }

func badArg(arg string, value float64, msg string) error {
	return &ArgumentError{Arg: arg, Value: value, Msg: msg}
}

// UUniFast draws n utilizations summing to uTotal (Bini & Buttazzo, 2005)
// from a stream seeded with seed.
func UUniFast(n int, uTotal float64, seed int64) ([]float64, error) {
	return UUniFastRand(rand.New(rand.NewSource(seed)), n, uTotal)
}

// UUniFastRand is UUniFast over a caller-owned stream. It consumes exactly
// n-1 draws from rng.
func UUniFastRand(rng *rand.Rand, n int, uTotal float64) ([]float64, error) {
	if n <= 0 {
		return nil, badArg("n", float64(n), "must be positive")
	}
	if uTotal < 0 || math.IsNaN(uTotal) {
		return nil, badArg("u_total", uTotal, "must be non-negative")
	}

	out := make([]float64, 0, n)
	sum := uTotal
	for i := 1; i < n; i++ {
		next := sum * math.Pow(rng.Float64(), 1.0/float64(n-i))
		out = append(out, sum-next)
		sum = next
	}
	// the last component takes whatever remains
	out = append(out, sum)
	return out, nil
}
