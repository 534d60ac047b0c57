// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/sensors"
)

// RegisterDumpOptions selects what RunRegisterDump does before and while
// printing.
type RegisterDumpOptions struct {
	Configure bool // run the configuration sequence first
	BitFields bool // print bit field descriptions under each register
	JSON      bool // emit a registerConfigFile instead of a table
}

// registerConfigFile is the exported register snapshot.
type registerConfigFile struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// RunRegisterDump opens the configured bus and prints the MPU6050 register
// map with current values.
func RunRegisterDump(cfg *config.Config, w io.Writer, opts RegisterDumpOptions, log *zap.Logger) error {
	bus, err := sensors.OpenBus(cfg.BusConfig(), sensors.SystemClock{})
	if err != nil {
		return err
	}
	defer bus.Close()

	if opts.Configure {
		dev, err := sensors.NewMPU6050(bus, cfg.DeviceConfig(), sensors.WithLogger(log))
		if err != nil {
			return err
		}
		if err := dev.Configure(); err != nil {
			log.Warn("configure failed, dumping anyway", zap.Error(err))
		}
	}
	return dumpRegisters(bus, w, opts, time.Now())
}

func dumpRegisters(bus sensors.Bus, w io.Writer, opts RegisterDumpOptions, now time.Time) error {
	regs := sensors.RegisterMap()
	values, readErr := sensors.ReadRegisters(bus, regs)

	if opts.JSON {
		out := registerConfigFile{
			Version:   1,
			Device:    "mpu6050",
			Timestamp: now.Format(time.RFC3339),
			Registers: make(map[string]string, len(values)),
		}
		for addr, v := range values {
			out.Registers[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", v)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return readErr
	}

	fmt.Fprintf(w, "%-4s  %-18s  %-5s  %-3s  %s\n", "ADDR", "NAME", "VALUE", "ACC", "DESCRIPTION")
	for _, r := range regs {
		value := " --"
		if v, ok := values[r.Address]; ok {
			value = fmt.Sprintf(" 0x%02X", v)
		}
		fmt.Fprintf(w, "0x%02X  %-18s  %-5s  %-3s  %s\n", r.Address, r.Name, value, r.Access, r.Description)
		if !opts.BitFields {
			continue
		}
		for _, f := range r.BitFields {
			fmt.Fprintf(w, "      [%s] %s: %s", f.Bits, f.Name, f.Description)
			if f.Values != "" {
				fmt.Fprintf(w, " (%s)", f.Values)
			}
			fmt.Fprintln(w)
		}
	}
	return readErr
}
