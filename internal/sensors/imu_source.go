// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"strings"
)

// Bus drivers accepted by OpenBus.
const (
	DriverPeriph = "periph"
	DriverD2R2   = "d2r2"
	DriverSim    = "sim"
)

// BusConfig selects and addresses the I2C backend.
type BusConfig struct {
	Driver     string
	PeriphName string // periph bus name, "" for the first one
	D2R2Bus    int    // N in /dev/i2c-N
	Address    uint8
	SimSeed    int64
}

// OpenBus opens the configured backend. clock is only used by the
// simulated device.
func OpenBus(cfg BusConfig, clock Clock) (Bus, error) {
	addr := cfg.Address
	if addr == 0 {
		addr = DefaultAddress
	}

	switch strings.ToLower(cfg.Driver) {
	case "", DriverPeriph:
		return OpenPeriphBus(cfg.PeriphName, uint16(addr))
	case DriverD2R2:
		return OpenD2R2Bus(cfg.D2R2Bus, addr)
	case DriverSim:
		return NewSimBus(clock, cfg.SimSeed), nil
	default:
		return nil, fmt.Errorf("unknown bus driver %q", cfg.Driver)
	}
}

// ReadRegisters reads single registers one by one, for diagnostics.
// Registers that fail to read are reported in the returned error and left
// out of the map.
func ReadRegisters(bus Bus, regs []RegisterInfo) (map[byte]byte, error) {
	values := make(map[byte]byte, len(regs))
	var failed []string
	var buf [1]byte
	for _, r := range regs {
		if r.Access == "W" {
			continue
		}
		if err := bus.ReadReg(r.Address, buf[:]); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", r.Name, err))
			continue
		}
		values[r.Address] = buf[0]
	}
	if len(failed) > 0 {
		return values, fmt.Errorf("register read failed: %s", strings.Join(failed, "; "))
	}
	return values, nil
}
