// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/imu_conditioner/internal/filters"
)

// Pose is roll, pitch and yaw in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is left at 0.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// Tuning holds the Kalman parameters shared by the roll and pitch filters.
type Tuning struct {
	QAngle   float64
	QBias    float64
	RMeasure float64
}

func DefaultTuning() Tuning {
	return Tuning{
		QAngle:   filters.DefaultQAngle,
		QBias:    filters.DefaultQBias,
		RMeasure: filters.DefaultRMeasure,
	}
}

// Input is one conditioned IMU reading: acceleration in g, rates in deg/s.
type Input struct {
	AccelX, AccelY, AccelZ float64
	RateX, RateY, RateZ    float64
}

// Estimator fuses accelerometer tilt with gyro rates for roll and pitch and
// integrates the z rate into a heading.
type Estimator struct {
	roll  *filters.AngleEstimator
	pitch *filters.AngleEstimator

	heading float64 // unwrapped, deg
	rateZ   float64
	seeded  bool
}

func NewEstimator(t Tuning) *Estimator {
	newKF := func() *filters.AngleEstimator {
		k := filters.NewAngleEstimator()
		k.SetQAngle(t.QAngle)
		k.SetQBias(t.QBias)
		k.SetRMeasure(t.RMeasure)
		return k
	}
	return &Estimator{roll: newKF(), pitch: newKF()}
}

// Update advances the estimate by dt seconds. The first call seeds roll and
// pitch from the accelerometer. A non-positive dt leaves the state as is.
func (e *Estimator) Update(in Input, dt float64) Pose {
	tilt := ComputePoseFromAccel(in.AccelX, in.AccelY, in.AccelZ)
	if !e.seeded {
		e.roll.SetAngle(tilt.Roll)
		e.pitch.SetAngle(tilt.Pitch)
		e.seeded = true
	}
	if dt > 0 {
		e.roll.Fuse(tilt.Roll, in.RateX, dt)
		e.pitch.Fuse(tilt.Pitch, in.RateY, dt)
		e.heading += in.RateZ * dt
	}
	e.rateZ = in.RateZ
	return e.Pose()
}

func (e *Estimator) Pose() Pose {
	return Pose{
		Roll:  e.roll.Angle(),
		Pitch: e.pitch.Angle(),
		Yaw:   WrapDegrees(e.heading),
	}
}

// Heading is the integrated z rotation since start or the last
// ResetHeading, not wrapped.
func (e *Estimator) Heading() float64 { return e.heading }

// HeadingRate is the last z rate passed to Update.
func (e *Estimator) HeadingRate() float64 { return e.rateZ }

func (e *Estimator) ResetHeading() { e.heading = 0 }

// Biases returns the gyro x and y biases learned by the filters.
func (e *Estimator) Biases() (x, y float64) { return e.roll.Bias(), e.pitch.Bias() }

// WrapDegrees maps an angle to (-180, 180].
func WrapDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a
}
