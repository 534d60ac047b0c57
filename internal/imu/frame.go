// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import "encoding/binary"

// FrameSize is the length of the contiguous accel/temp/gyro data block.
const FrameSize = 14

// Frame holds one raw accel/temperature/gyro read, as signed 16-bit words.
type Frame struct {
	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Temp int16 `json:"temp"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// ParseFrame decodes the 14-byte block read from the accel base register.
// Each word is big-endian, high byte first.
func ParseFrame(b [FrameSize]byte) Frame {
	word := func(i int) int16 { return int16(binary.BigEndian.Uint16(b[i : i+2])) }
	return Frame{
		Ax:   word(0),
		Ay:   word(2),
		Az:   word(4),
		Temp: word(6),
		Gx:   word(8),
		Gy:   word(10),
		Gz:   word(12),
	}
}

// Spurious reports whether the block starts with two zero bytes, which the
// device sometimes returns instead of a real sample.
func Spurious(b [FrameSize]byte) bool {
	return b[0] == 0 && b[1] == 0
}

// TempF converts the raw temperature word to degrees Fahrenheit.
func TempF(raw int16) float64 {
	return float64(raw)*0.0052941 + 97.754
}
