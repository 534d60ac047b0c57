// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"

	d2r2i2c "github.com/d2r2/go-i2c"
	d2r2log "github.com/d2r2/go-logger"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus is register-level access to a single I2C device.
type Bus interface {
	// WriteReg writes one byte to a register.
	WriteReg(reg, value byte) error
	// ReadReg fills buf starting at reg (auto-increment).
	ReadReg(reg byte, buf []byte) error
	Close() error
}

// periphBus talks to the device through periph.io.
type periphBus struct {
	dev    *i2c.Dev
	closer i2c.BusCloser
}

// NewPeriphBus wraps an already opened periph I2C bus. Close does not close b.
func NewPeriphBus(b i2c.Bus, addr uint16) Bus {
	return &periphBus{dev: &i2c.Dev{Addr: addr, Bus: b}}
}

// OpenPeriphBus initializes the periph host and opens the named bus
// ("" selects the first one available).
func OpenPeriphBus(name string, addr uint16) (Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open I2C bus %q: %w", name, err)
	}
	return &periphBus{dev: &i2c.Dev{Addr: addr, Bus: b}, closer: b}, nil
}

func (p *periphBus) WriteReg(reg, value byte) error {
	return p.dev.Tx([]byte{reg, value}, nil)
}

func (p *periphBus) ReadReg(reg byte, buf []byte) error {
	return p.dev.Tx([]byte{reg}, buf)
}

func (p *periphBus) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// d2r2Bus talks to the device through /dev/i2c-N with d2r2/go-i2c.
type d2r2Bus struct {
	dev *d2r2i2c.I2C
}

// OpenD2R2Bus opens /dev/i2c-<bus> for the device at addr.
func OpenD2R2Bus(bus int, addr uint8) (Bus, error) {
	// go-i2c logs every transfer at debug level
	d2r2log.ChangePackageLogLevel("i2c", d2r2log.InfoLevel)

	dev, err := d2r2i2c.NewI2C(addr, bus)
	if err != nil {
		return nil, fmt.Errorf("open /dev/i2c-%d: %w", bus, err)
	}
	return &d2r2Bus{dev: dev}, nil
}

func (d *d2r2Bus) WriteReg(reg, value byte) error {
	return d.dev.WriteRegU8(reg, value)
}

func (d *d2r2Bus) ReadReg(reg byte, buf []byte) error {
	data, n, err := d.dev.ReadRegBytes(reg, len(buf))
	if err != nil {
		return err
	}
	if n != len(buf) {
		return fmt.Errorf("short read at 0x%02X: got %d of %d bytes", reg, n, len(buf))
	}
	copy(buf, data)
	return nil
}

func (d *d2r2Bus) Close() error { return d.dev.Close() }
