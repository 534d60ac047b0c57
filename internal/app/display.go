// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
)

const (
	screenWidth  = 128
	screenHeight = 64
	lineHeight   = 13
)

// screen is the part of *ssd1306.Dev the display loop draws through.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// displayData holds the latest values received for the OLED.
type displayData struct {
	mu sync.RWMutex

	sample     imu.Sample
	haveSample bool
	pose       orientation.Pose
	havePose   bool
	heading    imu.Heading
	haveHead   bool
}

func (d *displayData) setSample(v imu.Sample) {
	d.mu.Lock()
	d.sample, d.haveSample = v, true
	d.mu.Unlock()
}

func (d *displayData) setPose(v orientation.Pose) {
	d.mu.Lock()
	d.pose, d.havePose = v, true
	d.mu.Unlock()
}

func (d *displayData) setHeading(v imu.Heading) {
	d.mu.Lock()
	d.heading, d.haveHead = v, true
	d.mu.Unlock()
}

// displayLines returns the text rows for the current state.
func (d *displayData) displayLines() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.haveSample && !d.havePose && !d.haveHead {
		return []string{"IMU conditioner", "Waiting..."}
	}

	var lines []string
	if d.havePose {
		lines = append(lines, fmt.Sprintf("R%6.1f P%6.1f", d.pose.Roll, d.pose.Pitch))
	} else {
		lines = append(lines, "R   --- P   ---")
	}
	if d.haveHead {
		lines = append(lines,
			fmt.Sprintf("HDG %8.1f", d.heading.Angle),
			fmt.Sprintf("RATE %6.1f/s", d.heading.AngleRate))
	} else {
		lines = append(lines, "HDG      ---", "RATE     ---")
	}
	if d.haveSample {
		status := "OK"
		if !d.sample.Available {
			status = "N/A"
		}
		lines = append(lines, fmt.Sprintf("T %5.1fF %s", d.sample.TempF, status))
	}
	return lines
}

// renderLines draws up to four rows of text into a blank frame.
func renderLines(lines []string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, screenWidth, screenHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if i >= screenHeight/lineHeight {
			break
		}
		drawer.Dot = fixed.P(0, (i+1)*lineHeight)
		drawer.DrawString(line)
	}
	return img
}

func drawLines(dev screen, lines []string) error {
	return dev.Draw(dev.Bounds(), renderLines(lines), image.Point{})
}

// runDisplayLoop redraws dev every interval until ctx is done.
func runDisplayLoop(ctx context.Context, dev screen, data *displayData, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := drawLines(dev, data.displayLines()); err != nil {
				log.Warn("display update error", zap.Error(err))
			}
		}
	}
}

// RunDisplay shows pose and heading on an SSD1306 OLED until ctx is done.
func RunDisplay(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// the driver talks to the fixed 0x3C address
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Info("display initialized", zap.String("bus", bus.String()))

	if err := drawLines(dev, []string{"IMU conditioner", "Calibrating..."}); err != nil {
		log.Warn("display splash error", zap.Error(err))
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	data := &displayData{}
	if err := subscribeJSON(client, cfg.TopicIMU, log, data.setSample); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicPose, log, data.setPose); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicHeading, log, data.setHeading); err != nil {
		return err
	}

	runDisplayLoop(ctx, dev, data, cfg.DisplayUpdateInterval, log)
	return nil
}
