package bench

import (
	"math"
	"sort"
)

// Sampler collects per-tick frame deltas (seconds) into a fixed-capacity
// window and turns each full window into one filtered fps estimate.
type Sampler struct {
	window   []float64
	capacity int
}

// NewSampler creates a Sampler whose window holds capacity deltas.
func NewSampler(capacity int) *Sampler {
	return &Sampler{
		window:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// Add appends delta to the window. When the window reaches capacity it returns
// the filtered fps and true, and the window is cleared.
func (s *Sampler) Add(delta float64) (float64, bool) {
	s.window = append(s.window, delta)
	if len(s.window) < s.capacity {
		return 0, false
	}
	fps := TrimmedMeanFPS(s.window)
	s.window = s.window[:0]
	return fps, true
}

// Len returns the number of deltas currently buffered.
func (s *Sampler) Len() int {
	return len(s.window)
}

// Reset drops any partial window.
func (s *Sampler) Reset() {
	s.window = s.window[:0]
}

// TrimmedMeanFPS sorts a copy of the samples, averages the closed index range
// [n/3, 2n/3] and returns the reciprocal. For ten samples that is indices 3..6.
// Returns 0 for no samples and +Inf when the mean delta is 0.
func TrimmedMeanFPS(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, samples)
	sort.Float64s(sorted)

	var sum float64
	count := 0
	for i := n / 3; i <= n*2/3 && i < n; i++ {
		sum += sorted[i]
		count++
	}
	mean := sum / float64(count)
	if mean <= 0 {
		return math.Inf(1)
	}
	return 1.0 / mean
}
