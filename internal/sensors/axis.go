// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"math"

	"github.com/relabs-tech/imu_conditioner/internal/filters"
)

// AxisID indexes the six channels of an MPU6050.
type AxisID int

const (
	AccelX AxisID = iota
	AccelY
	AccelZ
	GyroX
	GyroY
	GyroZ

	NumAxes = 6
)

var axisNames = [NumAxes]string{"accel_x", "accel_y", "accel_z", "gyro_x", "gyro_y", "gyro_z"}

func (a AxisID) String() string {
	if a < 0 || int(a) >= NumAxes {
		return fmt.Sprintf("AxisID(%d)", int(a))
	}
	return axisNames[a]
}

// IsGyro reports whether the axis is scaled by the gyro range.
func (a AxisID) IsGyro() bool { return a >= GyroX }

// FilterSpec selects the low-pass stage of an axis.
// Order 1 uses K; order 2 uses CutoffHz and Bandwidth.
type FilterSpec struct {
	Order     int
	K         float64
	CutoffHz  float64
	Bandwidth float64
}

// New builds the configured filter. Unknown orders fall back to first order.
func (f FilterSpec) New() filters.LowPass {
	if f.Order == 2 {
		fo, bw := f.CutoffHz, f.Bandwidth
		if fo <= 0 {
			fo = filters.DefaultCutoffHz
		}
		if bw <= 0 {
			bw = filters.DefaultBandwidth
		}
		return filters.NewSecondOrder(fo, bw)
	}
	k := f.K
	if k <= 0 {
		k = filters.DefaultK
	}
	return filters.NewFirstOrder(k)
}

// AxisConfig describes one axis channel.
type AxisConfig struct {
	Name        string
	NominalRest float64 // expected reading at rest, 1 g for accel z
	WindowSize  int     // calibration window in samples
	Filter      FilterSpec
}

// DefaultWindowSize is the number of samples held by each axis' calibration window.
const DefaultWindowSize = 100

// DefaultAxisConfigs returns the per-axis defaults: first-order filters with
// k=0.5 on the accelerometer, 0.7 on gyro x/y and 0.23 on gyro z.
func DefaultAxisConfigs() [NumAxes]AxisConfig {
	var cfgs [NumAxes]AxisConfig
	gains := [NumAxes]float64{0.5, 0.5, 0.5, 0.7, 0.7, 0.23}
	for i := range cfgs {
		cfgs[i] = AxisConfig{
			Name:       AxisID(i).String(),
			WindowSize: DefaultWindowSize,
			Filter:     FilterSpec{Order: 1, K: gains[i]},
		}
	}
	cfgs[AccelZ].NominalRest = 1.0
	return cfgs
}

// AxisChannel is the per-axis state: raw count, physical value, drift
// corrected value and low-passed output, plus the calibration window.
type AxisChannel struct {
	name        string
	nominalRest float64

	raw       int16
	scaled    float64
	corrected float64
	filtered  float64

	stats *filters.StatAccumulator
	lpf   filters.LowPass
}

func NewAxisChannel(cfg AxisConfig) *AxisChannel {
	size := cfg.WindowSize
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &AxisChannel{
		name:        cfg.Name,
		nominalRest: cfg.NominalRest,
		stats:       filters.NewStatAccumulator(size),
		lpf:         cfg.Filter.New(),
	}
}

// SetRaw stores a new reading and its value in physical units.
func (c *AxisChannel) SetRaw(raw int16, scale float64) {
	c.raw = raw
	c.scaled = float64(raw) / scale
}

// Accumulate feeds the current scaled value into the calibration window.
func (c *AxisChannel) Accumulate() {
	c.stats.Accumulate(c.scaled)
}

// Process computes the corrected and filtered values from the current
// scaled value. When notMoving is set and the sample lies within one
// standard deviation of the window average, it is added to the window.
func (c *AxisChannel) Process(notMoving bool) {
	avg := c.stats.Average()
	std := c.stats.StdDeviation()

	c.corrected = c.scaled - avg + c.nominalRest
	c.filtered = c.lpf.Filter(c.corrected)

	if notMoving && math.Abs(c.scaled-avg) < std {
		c.Accumulate()
	}
}

// Reset clears the calibration window and the filter state.
func (c *AxisChannel) Reset() {
	c.stats.Reset()
	c.lpf.Reset()
	c.raw, c.scaled, c.corrected, c.filtered = 0, 0, 0, 0
}

func (c *AxisChannel) Name() string         { return c.name }
func (c *AxisChannel) Raw() int16           { return c.raw }
func (c *AxisChannel) Scaled() float64      { return c.scaled }
func (c *AxisChannel) Corrected() float64   { return c.corrected }
func (c *AxisChannel) Filtered() float64    { return c.filtered }
func (c *AxisChannel) Average() float64     { return c.stats.Average() }
func (c *AxisChannel) StdDev() float64      { return c.stats.StdDeviation() }
func (c *AxisChannel) SampleCount() int     { return c.stats.Count() }
func (c *AxisChannel) NominalRest() float64 { return c.nominalRest }
