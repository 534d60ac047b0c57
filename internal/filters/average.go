// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package filters

import "math"

// StatAccumulator keeps a running average and standard deviation over the
// last N samples. The running sum is updated in O(1) per sample; the
// standard deviation walks the window on every call.
//
// Average and StdDeviation return NaN until the first sample is accumulated.
type StatAccumulator struct {
	window []float64
	newest int
	count  int
	sum    float64
}

// NewStatAccumulator returns an accumulator with a window of n samples.
// n must be positive.
func NewStatAccumulator(n int) *StatAccumulator {
	if n <= 0 {
		panic("filters: window size must be positive")
	}
	return &StatAccumulator{
		window: make([]float64, n),
		newest: -1,
	}
}

// Accumulate adds x to the window, evicting the oldest sample once full.
func (a *StatAccumulator) Accumulate(x float64) {
	a.sum += x
	a.newest = (a.newest + 1) % len(a.window)

	if a.count == len(a.window) {
		// newest wrapped onto the oldest entry
		a.sum -= a.window[a.newest]
	} else {
		a.count++
	}

	a.window[a.newest] = x
}

// Filter accumulates x and returns the updated average.
func (a *StatAccumulator) Filter(x float64) float64 {
	a.Accumulate(x)
	return a.Average()
}

// Average returns sum/count.
func (a *StatAccumulator) Average() float64 {
	return a.sum / float64(a.count)
}

// StdDeviation returns the population standard deviation of the window.
func (a *StatAccumulator) StdDeviation() float64 {
	avg := a.Average()
	var ss float64
	for i := 0; i < a.count; i++ {
		d := a.window[i] - avg
		ss += d * d
	}
	return math.Sqrt(ss / float64(a.count))
}

// Count returns the number of samples currently in the window.
func (a *StatAccumulator) Count() int { return a.count }

// Size returns the window capacity.
func (a *StatAccumulator) Size() int { return len(a.window) }

// Reset empties the window.
func (a *StatAccumulator) Reset() {
	for i := range a.window {
		a.window[i] = 0
	}
	a.newest = -1
	a.count = 0
	a.sum = 0
}
