// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package filters

import "math"

// LowPass is a stateful scalar smoothing filter.
type LowPass interface {
	Filter(input float64) float64
	Reset()
}

// DefaultK is the first-order gain used when none is configured.
const DefaultK = 0.25

// FirstOrder is a single-pole low-pass filter:
//
//	out = last + k*(in - last)
//
// Larger k follows the input faster.
type FirstOrder struct {
	k    float64
	last float64
}

// NewFirstOrder returns a first-order filter with gain k in (0,1].
func NewFirstOrder(k float64) *FirstOrder {
	return &FirstOrder{k: k}
}

func (f *FirstOrder) Filter(input float64) float64 {
	out := f.last + f.k*(input-f.last)
	f.last = out
	return out
}

// Reset sets the stored output back to zero.
func (f *FirstOrder) Reset() { f.last = 0 }

func (f *FirstOrder) K() float64 { return f.k }

func (f *FirstOrder) SetK(k float64) { f.k = k }

// SampleRateHz is the fixed sample rate assumed by NewSecondOrder.
const SampleRateHz = 50.0

// Default cutoff and passband width for NewDefaultSecondOrder.
const (
	DefaultCutoffHz  = 2.0
	DefaultBandwidth = 2.2
)

// SecondOrder is a biquad low-pass filter. Its coefficients are sensitive:
// small changes visibly move the passband, so prefer NewSecondOrder over
// hand-entered values.
type SecondOrder struct {
	c       [5]float64
	inputs  [2]float64 // [x(n-2), x(n-1)]
	outputs [2]float64 // [y(n-2), y(n-1)]
}

// NewSecondOrder computes the coefficients from a cutoff frequency fo and a
// passband width bw (bw > fo for critical damping) at SampleRateHz.
func NewSecondOrder(fo, bw float64) *SecondOrder {
	return &SecondOrder{c: BiquadCoefficients(fo, bw)}
}

// NewDefaultSecondOrder uses DefaultCutoffHz and DefaultBandwidth.
func NewDefaultSecondOrder() *SecondOrder {
	return NewSecondOrder(DefaultCutoffHz, DefaultBandwidth)
}

// NewSecondOrderCoefficients uses the given coefficients as is.
func NewSecondOrderCoefficients(c [5]float64) *SecondOrder {
	return &SecondOrder{c: c}
}

// BiquadCoefficients returns c1..c5 for a low-pass biquad at SampleRateHz.
func BiquadCoefficients(fo, bw float64) [5]float64 {
	wo := 2 * math.Pi * (fo / SampleRateHz)
	alpha := math.Sin(wo) * math.Sinh(math.Log(2)/2*bw*wo/math.Sin(wo))

	b0 := (1 - math.Cos(wo)) / 2.0
	b1 := 1 - math.Cos(wo)
	b2 := (1 - math.Cos(wo)) / 2.0

	a0 := 1 + alpha
	a1 := -2 * math.Cos(wo)
	a2 := 1 - alpha

	return [5]float64{b0 / a0, b1 / a0, b2 / a0, a1 / a0, a2 / a0}
}

func (f *SecondOrder) Filter(input float64) float64 {
	out := input*f.c[0] + f.c[1]*f.inputs[1] + f.c[2]*f.inputs[0] -
		f.c[3]*f.outputs[1] - f.c[4]*f.outputs[0]

	f.outputs[0] = f.outputs[1]
	f.outputs[1] = out
	f.inputs[0] = f.inputs[1]
	f.inputs[1] = input

	return out
}

// Reset clears the stored inputs and outputs. Coefficients are kept.
func (f *SecondOrder) Reset() {
	f.inputs = [2]float64{}
	f.outputs = [2]float64{}
}

func (f *SecondOrder) Coefficients() [5]float64 { return f.c }

func (f *SecondOrder) SetCoefficients(c [5]float64) { f.c = c }
