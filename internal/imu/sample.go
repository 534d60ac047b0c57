// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

// Axis is the per-axis signal path snapshot.
type Axis struct {
	Raw       int16   `json:"raw"`
	Scaled    float64 `json:"scaled"`
	Corrected float64 `json:"corrected"`
	Filtered  float64 `json:"filtered"`
	CalAvg    float64 `json:"cal_avg"`
	CalStdDev float64 `json:"cal_std"`
}

// Sample is one conditioned IMU reading as published over MQTT.
type Sample struct {
	Source string `json:"source"`
	Time   string `json:"time"` // RFC3339

	AccelX Axis `json:"accel_x"` // g
	AccelY Axis `json:"accel_y"`
	AccelZ Axis `json:"accel_z"`
	GyroX  Axis `json:"gyro_x"` // deg/s
	GyroY  Axis `json:"gyro_y"`
	GyroZ  Axis `json:"gyro_z"`

	TempF      float64 `json:"temp_f"`
	ReadTimeMS float64 `json:"read_time_ms"`
	Available  bool    `json:"available"`
}

// Heading is what the drive controller consumes: the filtered z rate and
// its integral.
type Heading struct {
	Angle     float64 `json:"angle"`      // deg
	AngleRate float64 `json:"angle_rate"` // deg/s
	Time      string  `json:"time"`
}

// DriveCommand is published by the drive controller. The robot is taken as
// not moving when both motors are commanded to zero.
type DriveCommand struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// Stopped reports whether both motors are commanded to zero.
func (c DriveCommand) Stopped() bool {
	return c.Left == 0 && c.Right == 0
}

