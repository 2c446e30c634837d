// Package testutil provides shared test infrastructure for the benchmark
// packages: float assertions and synthetic fps models. It has no dependency on
// bench/ so that bench's own tests can import it.
package testutil

import (
	"math"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// FPSModel maps a live entity count to the frame rate a runtime would reach.
type FPSModel func(entities int) float64

// LinearFPS returns a model that starts at base fps and loses one fps per
// entitiesPerFPS entities, never dropping below 1.
func LinearFPS(base float64, entitiesPerFPS int) FPSModel {
	return func(entities int) float64 {
		return math.Max(base-float64(entities)/float64(entitiesPerFPS), 1)
	}
}

// CliffFPS returns a model that holds high fps up to limit entities and drops
// to low fps beyond it.
func CliffFPS(limit int, high, low float64) FPSModel {
	return func(entities int) float64 {
		if entities <= limit {
			return high
		}
		return low
	}
}

// Deltas returns n identical frame deltas for the given fps.
func Deltas(fps float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0 / fps
	}
	return out
}
