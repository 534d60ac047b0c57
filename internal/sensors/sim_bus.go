// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimBus is an in-memory MPU6050. It keeps a register file, honours the
// configured full-scale ranges and produces a gently rocking sensor with a
// fixed gyro drift and some noise. Used when no hardware is attached.
type SimBus struct {
	mu    sync.Mutex
	regs  [128]byte
	clock Clock
	start time.Time
	rng   *rand.Rand

	lastSample time.Time

	// Drift is the constant gyro offset in deg/s added to every axis.
	Drift [3]float64
	// AccelBias is the mounting offset in g.
	AccelBias [3]float64
	// Noise is the standard deviation of the accel (g) and gyro (deg/s) noise.
	Noise [2]float64
	// Motion enables the slow roll/pitch/yaw motion.
	Motion bool
}

// NewSimBus returns a simulated device at power-on reset.
func NewSimBus(clock Clock, seed int64) *SimBus {
	if clock == nil {
		clock = SystemClock{}
	}
	s := &SimBus{
		clock:     clock,
		start:     clock.Now(),
		rng:       rand.New(rand.NewSource(seed)),
		Drift:     [3]float64{0.8, -0.5, 1.2},
		AccelBias: [3]float64{0.01, -0.02, 0.015},
		Noise:     [2]float64{0.002, 0.05},
		Motion:    true,
	}
	s.regs[RegPwrMgmt1] = 0x40
	s.regs[RegWhoAmI] = DefaultAddress
	return s
}

func (s *SimBus) WriteReg(reg, value byte) error {
	if int(reg) >= len(s.regs) {
		return fmt.Errorf("sim: register 0x%02X out of range", reg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regs[reg] = value
	return nil
}

func (s *SimBus) ReadReg(reg byte, buf []byte) error {
	if int(reg)+len(buf) > len(s.regs) {
		return fmt.Errorf("sim: read 0x%02X+%d out of range", reg, len(buf))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg <= RegAccelXOutH && int(reg)+len(buf) > RegAccelXOutH {
		s.refresh()
	}
	if reg == RegIntStatus && s.clock.Now().Sub(s.lastSample) >= s.samplePeriod() {
		s.regs[RegIntStatus] |= intDataReady
	}
	copy(buf, s.regs[reg:])
	return nil
}

func (s *SimBus) Close() error { return nil }

// Register returns the current register value.
func (s *SimBus) Register(reg byte) byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regs[reg]
}

// samplePeriod follows SMPLRT_DIV with the 1 kHz gyro output rate of
// DLPF modes 1-6 (8 kHz when the DLPF is off).
func (s *SimBus) samplePeriod() time.Duration {
	base := time.Millisecond
	if dlpf := s.regs[RegConfig] & 0x07; dlpf == 0 || dlpf == 7 {
		base = 125 * time.Microsecond
	}
	return base * time.Duration(1+int(s.regs[RegSampleRateDiv]))
}

// refresh writes a new 14-byte measurement block and clears data ready.
func (s *SimBus) refresh() {
	now := s.clock.Now()
	t := now.Sub(s.start).Seconds()

	var roll, pitch, rollRate, pitchRate, yawRate float64
	if s.Motion {
		roll = 10 * math.Sin(t*0.5)
		pitch = 6 * math.Cos(t*0.3)
		rollRate = 10 * 0.5 * math.Cos(t*0.5)
		pitchRate = -6 * 0.3 * math.Sin(t*0.3)
		yawRate = 15 * math.Sin(t*0.1)
	}

	r, p := roll*math.Pi/180, pitch*math.Pi/180
	accel := [3]float64{
		-math.Sin(p),
		math.Sin(r) * math.Cos(p),
		math.Cos(r) * math.Cos(p),
	}
	gyro := [3]float64{rollRate, pitchRate, yawRate}

	aRange := AccelRange((s.regs[RegAccelConfig] >> 3) & 0x03)
	gRange := GyroRange((s.regs[RegGyroConfig] >> 3) & 0x03)

	words := [7]int16{}
	for i := 0; i < 3; i++ {
		a := accel[i] + s.AccelBias[i] + s.rng.NormFloat64()*s.Noise[0]
		g := gyro[i] + s.Drift[i] + s.rng.NormFloat64()*s.Noise[1]
		words[i] = clampInt16(a * aRange.ScaleFactor())
		words[4+i] = clampInt16(g * gRange.ScaleFactor())
	}
	// 25 °C
	words[3] = clampInt16((77.0 - 97.754) / 0.0052941)

	for i, w := range words {
		binary.BigEndian.PutUint16(s.regs[int(RegAccelXOutH)+2*i:], uint16(w))
	}
	s.regs[RegIntStatus] &^= intDataReady
	s.lastSample = now
}

func clampInt16(v float64) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	}
	return int16(math.Round(v))
}
