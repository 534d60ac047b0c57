// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package filters

// Default tuning for AngleEstimator.
const (
	DefaultQAngle   = 0.001
	DefaultQBias    = 0.003
	DefaultRMeasure = 0.03
)

// AngleEstimator is a two-state (angle, gyro bias) Kalman filter that fuses
// an absolute angle measurement with a rate measurement. Angles are in
// degrees, rates in degrees per second, dt in seconds.
//
// The covariance starts at zero: the bias is assumed to be zero and the
// starting angle known (see SetAngle).
type AngleEstimator struct {
	qAngle   float64
	qBias    float64
	rMeasure float64

	angle float64
	bias  float64
	rate  float64
	p     [2][2]float64
}

func NewAngleEstimator() *AngleEstimator {
	return &AngleEstimator{
		qAngle:   DefaultQAngle,
		qBias:    DefaultQBias,
		rMeasure: DefaultRMeasure,
	}
}

// Fuse runs one predict/correct step and returns the corrected angle.
func (k *AngleEstimator) Fuse(measuredAngle, measuredRate, dt float64) float64 {
	// predict
	k.rate = measuredRate - k.bias
	k.angle += dt * k.rate

	// in place; each line reads the entries already updated above it
	k.p[0][0] += dt * (dt*k.p[1][1] - k.p[0][1] - k.p[1][0] + k.qAngle)
	k.p[0][1] -= dt * k.p[1][1]
	k.p[1][0] -= dt * k.p[1][1]
	k.p[1][1] += dt * k.qBias

	s := k.p[0][0] + k.rMeasure
	k0 := k.p[0][0] / s
	k1 := k.p[1][0] / s

	y := measuredAngle - k.angle
	k.angle += k0 * y
	k.bias += k1 * y

	// P10 and P11 use the P00 and P01 values updated on the lines above.
	// This differs from the textbook form and is kept on purpose.
	k.p[0][0] -= k0 * k.p[0][0]
	k.p[0][1] -= k0 * k.p[0][1]
	k.p[1][0] -= k1 * k.p[0][0]
	k.p[1][1] -= k1 * k.p[0][1]

	return k.angle
}

// SetAngle seeds the angle estimate. The covariance is left untouched.
func (k *AngleEstimator) SetAngle(angle float64) { k.angle = angle }

func (k *AngleEstimator) Angle() float64 { return k.angle }

func (k *AngleEstimator) Bias() float64 { return k.bias }

// Rate returns the unbiased rate from the last Fuse.
func (k *AngleEstimator) Rate() float64 { return k.rate }

// Covariance returns a copy of the error covariance matrix.
func (k *AngleEstimator) Covariance() [2][2]float64 { return k.p }

func (k *AngleEstimator) SetQAngle(q float64)   { k.qAngle = q }
func (k *AngleEstimator) SetQBias(q float64)    { k.qBias = q }
func (k *AngleEstimator) SetRMeasure(r float64) { k.rMeasure = r }

func (k *AngleEstimator) QAngle() float64   { return k.qAngle }
func (k *AngleEstimator) QBias() float64    { return k.qBias }
func (k *AngleEstimator) RMeasure() float64 { return k.rMeasure }
