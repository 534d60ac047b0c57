// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/config"
	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/instrumentation"
	"github.com/relabs-tech/imu_conditioner/internal/logger"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
	"github.com/relabs-tech/imu_conditioner/internal/sensors"
)

const sampleSource = "mpu6050"

// ProducerTopics are the MQTT topics the producer publishes to.
type ProducerTopics struct {
	Sample  string
	Pose    string
	Heading string
}

// Producer runs the acquisition loop: read, condition, estimate, publish.
type Producer struct {
	dev    *sensors.MPU6050
	est    *orientation.Estimator
	gate   *MotionGate
	pub    Publisher
	topics ProducerTopics
	debug  *axisDebugFiles
	log    *zap.Logger

	lastTick time.Time
	ticks    int
	failures int
}

func NewProducer(dev *sensors.MPU6050, est *orientation.Estimator, gate *MotionGate,
	pub Publisher, topics ProducerTopics, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Producer{dev: dev, est: est, gate: gate, pub: pub, topics: topics, log: log}
}

// EnableDebugFiles registers the per-axis debug files with reg. The files
// are saved every maxLines rows; zero buffers until reg is closed.
func (p *Producer) EnableDebugFiles(reg *instrumentation.Registry, maxLines int) error {
	d, err := openAxisDebugFiles(reg, maxLines)
	if err != nil {
		return err
	}
	p.debug = d
	return nil
}

// Step runs one loop iteration at time now. Until a calibration succeeds
// each step retries it instead of updating.
func (p *Producer) Step(now time.Time) error {
	p.ticks++

	if !p.dev.Calibrated() {
		n := p.dev.Config().CalibrationSamples
		if err := p.dev.Calibrate(n); err != nil {
			p.failures++
			return err
		}
		p.lastTick = time.Time{}
	}

	p.log.Debug("update start", logger.Event("update_start"), logger.Normal)
	notMoving := p.gate.NotMoving()
	if err := p.dev.Update(notMoving); err != nil {
		p.failures++
		return err
	}

	dt := 0.0
	if !p.lastTick.IsZero() {
		dt = now.Sub(p.lastTick).Seconds()
	}
	p.lastTick = now

	pose := p.est.Update(orientation.Input{
		AccelX: p.dev.Axis(sensors.AccelX).Filtered(),
		AccelY: p.dev.Axis(sensors.AccelY).Filtered(),
		AccelZ: p.dev.Axis(sensors.AccelZ).Filtered(),
		RateX:  p.dev.Axis(sensors.GyroX).Filtered(),
		RateY:  p.dev.Axis(sensors.GyroY).Filtered(),
		RateZ:  p.dev.FilteredRateZ(),
	}, dt)

	if p.debug != nil {
		if err := p.debug.write(p.dev); err != nil {
			p.log.Warn("saving debug files", zap.Error(err))
		}
	}

	sample := p.dev.Snapshot(sampleSource)
	heading := imu.Heading{
		Angle:     p.est.Heading(),
		AngleRate: p.est.HeadingRate(),
		Time:      now.Format(time.RFC3339Nano),
	}

	var errs []error
	if err := p.pub.PublishJSON(p.topics.Sample, sample); err != nil {
		errs = append(errs, err)
	}
	if err := p.pub.PublishJSON(p.topics.Pose, pose); err != nil {
		errs = append(errs, err)
	}
	if err := p.pub.PublishJSON(p.topics.Heading, heading); err != nil {
		errs = append(errs, err)
	}

	p.log.Debug("update end",
		logger.Event("update_end"),
		zap.Bool("not_moving", notMoving),
		zap.Float64("rate_z", heading.AngleRate),
		zap.Float64("heading", heading.Angle),
		zap.Duration("read_time", p.dev.LastReadDuration()),
		logger.Normal)
	return errors.Join(errs...)
}

// Run steps on every tick until ctx is done. Per-tick failures are logged
// and the loop continues.
func (p *Producer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info("producer stopping", zap.Int("ticks", p.ticks), zap.Int("failures", p.failures))
			return nil
		case t := <-ticker.C:
			if err := p.Step(t); err != nil {
				if errors.Is(err, sensors.ErrTimeout) || errors.Is(err, sensors.ErrCalibrationAborted) {
					p.log.Warn("tick skipped", zap.Error(err), logger.Bad)
					continue
				}
				p.log.Error("tick failed", zap.Error(err))
			}
		}
	}
}

// RunIMUProducer wires the IMU, estimator, motion gate and MQTT from cfg and
// runs until ctx is done.
func RunIMUProducer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	clock := sensors.SystemClock{}

	bus, err := sensors.OpenBus(cfg.BusConfig(), clock)
	if err != nil {
		return fmt.Errorf("open IMU bus: %w", err)
	}
	defer bus.Close()

	dev, err := sensors.NewMPU6050(bus, cfg.DeviceConfig(),
		sensors.WithClock(clock),
		sensors.WithLogger(log.Named("mpu6050")))
	if err != nil {
		return err
	}
	if err := dev.Init(); err != nil {
		// the loop retries calibration on every tick
		log.Warn("IMU init incomplete", zap.Error(err), logger.Bad)
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer, log)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	gate := NewMotionGate()
	if cfg.TopicDrive != "" {
		if err := subscribeJSON(client, cfg.TopicDrive, log, gate.Observe); err != nil {
			return err
		}
	}

	est := orientation.NewEstimator(orientation.Tuning{
		QAngle:   cfg.KalmanQAngle,
		QBias:    cfg.KalmanQBias,
		RMeasure: cfg.KalmanRMeasure,
	})

	p := NewProducer(dev, est, gate, mqttPublisher{client: client}, ProducerTopics{
		Sample:  cfg.TopicIMU,
		Pose:    cfg.TopicPose,
		Heading: cfg.TopicHeading,
	}, log)

	if cfg.DebugFiles {
		if cfg.DebugRetention > 0 {
			removed, err := instrumentation.DeleteOldRuns(cfg.DebugDir, cfg.DebugRetention, time.Now())
			if err != nil {
				log.Warn("pruning debug runs", zap.Error(err))
			}
			if len(removed) > 0 {
				log.Info("pruned debug runs", zap.Strings("runs", removed))
			}
		}
		reg, err := instrumentation.NewRegistry(cfg.DebugDir, log.Named("debug"))
		if err != nil {
			return err
		}
		defer func() {
			if err := reg.Close(); err != nil {
				log.Error("saving debug files", zap.Error(err))
			}
		}()
		if err := p.EnableDebugFiles(reg, cfg.DebugMaxLines); err != nil {
			return err
		}
	}

	log.Info("starting publish loop",
		zap.Duration("interval", cfg.IMUSampleInterval),
		zap.String("bus", cfg.IMUBusDriver))
	return p.Run(ctx, cfg.IMUSampleInterval)
}
