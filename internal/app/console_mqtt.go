// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
)

func formatSample(s imu.Sample) string {
	status := "OK"
	if !s.Available {
		status = "UNAVAILABLE"
	}
	return fmt.Sprintf(
		"[IMU ] acc=%7.3f %7.3f %7.3f g  rate=%8.3f %8.3f %8.3f °/s  T=%5.1f°F  read=%5.2fms  %s",
		s.AccelX.Filtered, s.AccelY.Filtered, s.AccelZ.Filtered,
		s.GyroX.Filtered, s.GyroY.Filtered, s.GyroZ.Filtered,
		s.TempF, s.ReadTimeMS, status,
	)
}

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE] ROLL=%7.2f  PITCH=%7.2f  YAW=%7.2f", p.Roll, p.Pitch, p.Yaw)
}

func formatHeading(h imu.Heading) string {
	return fmt.Sprintf("[HDG ] ANGLE=%8.2f  RATE=%7.2f °/s", h.Angle, h.AngleRate)
}

// throttledPrinter prints at most one line per kind per interval.
type throttledPrinter struct {
	mu       sync.Mutex
	w        io.Writer
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

func newThrottledPrinter(w io.Writer, interval time.Duration) *throttledPrinter {
	return &throttledPrinter{w: w, interval: interval, last: map[string]time.Time{}, now: time.Now}
}

func (p *throttledPrinter) print(kind, line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.now()
	if last, ok := p.last[kind]; ok && now.Sub(last) < p.interval {
		return
	}
	p.last[kind] = now
	fmt.Fprintln(p.w, line)
}

// RunConsoleMQTT prints the producer's telemetry until ctx is done.
func RunConsoleMQTT(ctx context.Context, cfg *config.Config, out io.Writer, log *zap.Logger) error {
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	pr := newThrottledPrinter(out, cfg.ConsoleLogInterval)

	if err := subscribeJSON(client, cfg.TopicIMU, log, func(s imu.Sample) {
		pr.print("imu", formatSample(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicPose, log, func(p orientation.Pose) {
		pr.print("pose", formatPose(p))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicHeading, log, func(h imu.Heading) {
		pr.print("heading", formatHeading(h))
	}); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("console: shutting down")
	return nil
}
