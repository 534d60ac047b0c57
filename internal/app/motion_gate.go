// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"sync"

	"github.com/relabs-tech/imu_conditioner/internal/imu"
)

// MotionGate tracks whether the drivetrain is commanded to stand still.
// Calibration is only refined while it is. It starts stopped.
type MotionGate struct {
	mu       sync.RWMutex
	last     imu.DriveCommand
	commands int
}

func NewMotionGate() *MotionGate { return &MotionGate{} }

// Observe records the latest drive command.
func (g *MotionGate) Observe(cmd imu.DriveCommand) {
	g.mu.Lock()
	g.last = cmd
	g.commands++
	g.mu.Unlock()
}

// NotMoving is true when both motors were last commanded to zero.
func (g *MotionGate) NotMoving() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.last.Stopped()
}

// Commands is the number of drive commands observed.
func (g *MotionGate) Commands() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.commands
}
