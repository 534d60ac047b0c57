// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// AccelRange selects the accelerometer full-scale range.
type AccelRange byte

const (
	Accel2G AccelRange = iota
	Accel4G
	Accel8G
	Accel16G
)

// GyroRange selects the gyroscope full-scale range.
type GyroRange byte

const (
	Gyro250DPS GyroRange = iota
	Gyro500DPS
	Gyro1000DPS
	Gyro2000DPS
)

// Bits 3 and 4 of ACCEL_CONFIG / GYRO_CONFIG, indexed by range.
var fullScaleCodes = [4]byte{0x00, 0x08, 0x10, 0x18}

var (
	accelScale = [4]float64{16384.0, 8192.0, 4096.0, 2048.0} // LSB/g
	gyroScale  = [4]float64{131.0, 65.5, 32.8, 16.4}         // LSB/(deg/s)

	accelNames = [4]string{"±2g", "±4g", "±8g", "±16g"}
	gyroNames  = [4]string{"±250°/s", "±500°/s", "±1000°/s", "±2000°/s"}
)

func (r AccelRange) Valid() bool { return r <= Accel16G }

// RegisterCode returns the ACCEL_CONFIG value for this range.
func (r AccelRange) RegisterCode() byte { return fullScaleCodes[r] }

// ScaleFactor returns LSB per g.
func (r AccelRange) ScaleFactor() float64 { return accelScale[r] }

func (r AccelRange) String() string {
	if !r.Valid() {
		return fmt.Sprintf("AccelRange(%d)", byte(r))
	}
	return accelNames[r]
}

func (r GyroRange) Valid() bool { return r <= Gyro2000DPS }

// RegisterCode returns the GYRO_CONFIG value for this range.
func (r GyroRange) RegisterCode() byte { return fullScaleCodes[r] }

// ScaleFactor returns LSB per deg/s.
func (r GyroRange) ScaleFactor() float64 { return gyroScale[r] }

func (r GyroRange) String() string {
	if !r.Valid() {
		return fmt.Sprintf("GyroRange(%d)", byte(r))
	}
	return gyroNames[r]
}
