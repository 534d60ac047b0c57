// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/imu_conditioner/internal/instrumentation"
	"github.com/relabs-tech/imu_conditioner/internal/sensors"
)

// axisDebugFiles writes one file per axis plus one with every scaled axis
// and the temperature. Once maxLines rows are buffered the registry is
// saved; zero leaves saving to Close.
type axisDebugFiles struct {
	reg      *instrumentation.Registry
	maxLines int
	axes     [sensors.NumAxes]*instrumentation.DebugFile
	all      *instrumentation.DebugFile
}

func openAxisDebugFiles(reg *instrumentation.Registry, maxLines int) (*axisDebugFiles, error) {
	d := &axisDebugFiles{reg: reg, maxLines: maxLines}
	for i := range d.axes {
		f, err := reg.Open(sensors.AxisID(i).String(), true, "scaled\tcorrected\tfiltered\tcal_avg\tcal_std")
		if err != nil {
			return nil, err
		}
		d.axes[i] = f
	}

	header := make([]string, 0, sensors.NumAxes+1)
	for i := 0; i < sensors.NumAxes; i++ {
		header = append(header, sensors.AxisID(i).String())
	}
	header = append(header, "temp_f")

	f, err := reg.Open("all_axes", true, strings.Join(header, "\t"))
	if err != nil {
		return nil, err
	}
	d.all = f
	return d, nil
}

// write adds one row per file and saves when the buffers are full.
func (d *axisDebugFiles) write(m *sensors.MPU6050) error {
	var all strings.Builder
	for i, f := range d.axes {
		a := m.Axis(sensors.AxisID(i))
		f.Writef("%.5f\t%.5f\t%.5f\t%.5f\t%.5f",
			a.Scaled(), a.Corrected(), a.Filtered(), a.Average(), a.StdDev())
		fmt.Fprintf(&all, "%.5f\t", a.Scaled())
	}
	fmt.Fprintf(&all, "%.2f", m.TempF())
	d.all.Write(all.String())

	if d.maxLines > 0 && d.all.Len() >= d.maxLines {
		return d.reg.Save()
	}
	return nil
}
