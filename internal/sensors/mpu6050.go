// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/logger"
)

var (
	// ErrTimeout is returned when data ready is not seen before the read deadline.
	ErrTimeout = errors.New("mpu6050: data ready timeout")
	// ErrCalibrationAborted is returned when a read fails during calibration.
	ErrCalibrationAborted = errors.New("mpu6050: calibration aborted")
	// ErrNotCalibrated is returned by Update until a calibration has completed.
	ErrNotCalibrated = errors.New("mpu6050: not calibrated")
	// ErrInvalidConfig is returned by NewMPU6050 for out of range settings.
	ErrInvalidConfig = errors.New("mpu6050: invalid config")
)

// Defaults for DeviceConfig.
const (
	DefaultDeadline           = time.Second
	DefaultCalibrationSamples = 100
)

// DeviceConfig is the fixed configuration of an MPU6050.
type DeviceConfig struct {
	AccelRange    AccelRange
	GyroRange     GyroRange
	SampleRateDiv byte
	DLPFMode      byte

	// Deadline bounds one ReadFrame, spurious frame retries included.
	Deadline time.Duration
	// PollInterval is slept between status reads; zero busy-polls.
	PollInterval time.Duration

	CalibrationSamples int
	Axes               [NumAxes]AxisConfig
}

// DefaultDeviceConfig returns ±2g, ±250°/s, divider 7, DLPF 6 and a one
// second read deadline.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		AccelRange:         Accel2G,
		GyroRange:          Gyro250DPS,
		SampleRateDiv:      defaultDivider,
		DLPFMode:           defaultDLPF,
		Deadline:           DefaultDeadline,
		CalibrationSamples: DefaultCalibrationSamples,
		Axes:               DefaultAxisConfigs(),
	}
}

// Option configures an MPU6050.
type Option func(*MPU6050)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(m *MPU6050) { m.clock = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(m *MPU6050) { m.log = l }
}

// MPU6050 reads and conditions the accelerometer and gyroscope of one chip.
// It is not safe for concurrent use.
type MPU6050 struct {
	bus   Bus
	cfg   DeviceConfig
	clock Clock
	log   *zap.Logger

	axes  [NumAxes]*AxisChannel
	frame imu.Frame
	tempF float64

	available  bool
	calibrated bool
	readTime   time.Duration
	lastRead   time.Time
	spurious   int
}

// NewMPU6050 returns a driver for the chip on bus. A zero Deadline or
// CalibrationSamples takes the default.
func NewMPU6050(bus Bus, cfg DeviceConfig, opts ...Option) (*MPU6050, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &MPU6050{
		bus:   bus,
		cfg:   cfg,
		clock: SystemClock{},
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cfg.Deadline <= 0 {
		m.cfg.Deadline = DefaultDeadline
	}
	if m.cfg.CalibrationSamples <= 0 {
		m.cfg.CalibrationSamples = DefaultCalibrationSamples
	}
	for i := range m.axes {
		m.axes[i] = NewAxisChannel(cfg.Axes[i])
	}
	return m, nil
}

// Validate checks the ranges and register fields.
func (c DeviceConfig) Validate() error {
	var errs []error
	if !c.AccelRange.Valid() {
		errs = append(errs, fmt.Errorf("accel range %s", c.AccelRange))
	}
	if !c.GyroRange.Valid() {
		errs = append(errs, fmt.Errorf("gyro range %s", c.GyroRange))
	}
	if c.DLPFMode > 7 {
		errs = append(errs, fmt.Errorf("DLPF mode %d, want 0-7", c.DLPFMode))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Configure programs sample rate, filter, ranges, clock source and the
// data ready interrupt. Every write is attempted; failures are joined.
func (m *MPU6050) Configure() error {
	writes := []struct {
		reg   byte
		value byte
		name  string
	}{
		{RegSampleRateDiv, m.cfg.SampleRateDiv, "SMPLRT_DIV"},
		{RegConfig, m.cfg.DLPFMode, "CONFIG"},
		{RegGyroConfig, m.cfg.GyroRange.RegisterCode(), "GYRO_CONFIG"},
		{RegAccelConfig, m.cfg.AccelRange.RegisterCode(), "ACCEL_CONFIG"},
		{RegPwrMgmt1, clockPLLGyroX, "PWR_MGMT_1"},
		{RegFIFOEnable, 0x00, "FIFO_EN"},
		{RegIntEnable, intDataReady, "INT_ENABLE"},
	}

	var errs []error
	for _, w := range writes {
		if err := m.bus.WriteReg(w.reg, w.value); err != nil {
			errs = append(errs, fmt.Errorf("write %s (0x%02X): %w", w.name, w.reg, err))
		}
	}
	return errors.Join(errs...)
}

// Calibrate reads n frames at rest and fills every axis' window with them.
// Any earlier calibration data is discarded first. n must be positive.
func (m *MPU6050) Calibrate(n int) error {
	m.calibrated = false
	for _, a := range m.axes {
		a.Reset()
	}
	if n <= 0 {
		return fmt.Errorf("%w: %d samples requested", ErrCalibrationAborted, n)
	}

	for i := 0; i < n; i++ {
		if err := m.ReadFrame(); err != nil {
			m.log.Warn("calibration aborted",
				zap.Int("sample", i), zap.Int("of", n), zap.Error(err), logger.Bad)
			return fmt.Errorf("%w after %d of %d samples: %w", ErrCalibrationAborted, i, n, err)
		}
		for _, a := range m.axes {
			a.Accumulate()
		}
	}

	m.calibrated = true
	m.log.Info("calibration complete",
		zap.Int("samples", n),
		zap.Float64("gyro_z_avg", m.axes[GyroZ].Average()),
		zap.Float64("gyro_z_std", m.axes[GyroZ].StdDev()),
		logger.Interesting)
	return nil
}

// Init configures the chip and runs the initial calibration. Configuration
// write errors are logged and do not stop initialization.
func (m *MPU6050) Init() error {
	start := m.clock.Now()
	m.log.Info("init start", logger.Event("init_start"), logger.Normal)

	if err := m.Configure(); err != nil {
		m.log.Warn("configure", zap.Error(err), logger.Bad)
	}
	m.log.Info("configured",
		zap.Stringer("accel_range", m.cfg.AccelRange),
		zap.Stringer("gyro_range", m.cfg.GyroRange),
		zap.Uint8("dlpf", m.cfg.DLPFMode),
		zap.Uint8("smplrt_div", m.cfg.SampleRateDiv))

	err := m.Calibrate(m.cfg.CalibrationSamples)

	m.log.Info("init end",
		logger.Event("init_end"),
		zap.Duration("took", m.clock.Now().Sub(start)),
		zap.Bool("calibrated", m.calibrated),
		logger.Normal)
	return err
}

// ReadFrame waits for data ready and reads one measurement block.
//
// INT_STATUS is polled until bit 0 is set or Deadline has elapsed since
// entry. A block whose first two bytes are zero is discarded and the wait
// repeats under the same deadline. On timeout the device is marked
// unavailable and ErrTimeout is returned.
func (m *MPU6050) ReadFrame() error {
	start := m.clock.Now()
	deadline := start.Add(m.cfg.Deadline)

	var status [1]byte
	var block [imu.FrameSize]byte
	for {
		ready := false
		for !ready {
			err := m.bus.ReadReg(RegIntStatus, status[:])
			ready = err == nil && status[0]&intDataReady != 0
			if !m.clock.Now().Before(deadline) {
				m.available = false
				m.log.Warn("read timeout",
					logger.Event("read_timeout"),
					zap.Duration("deadline", m.cfg.Deadline),
					logger.Bad)
				return ErrTimeout
			}
			if !ready && m.cfg.PollInterval > 0 {
				m.clock.Sleep(m.cfg.PollInterval)
			}
		}

		if err := m.bus.ReadReg(RegAccelXOutH, block[:]); err != nil {
			m.log.Debug("data read failed, retrying", zap.Error(err))
			continue
		}
		if imu.Spurious(block) {
			m.spurious++
			continue
		}
		break
	}

	m.frame = imu.ParseFrame(block)
	m.applyFrame()

	now := m.clock.Now()
	m.readTime = now.Sub(start)
	m.lastRead = now
	m.available = true
	return nil
}

func (m *MPU6050) applyFrame() {
	f := m.frame
	as := m.cfg.AccelRange.ScaleFactor()
	gs := m.cfg.GyroRange.ScaleFactor()

	m.axes[AccelX].SetRaw(f.Ax, as)
	m.axes[AccelY].SetRaw(f.Ay, as)
	m.axes[AccelZ].SetRaw(f.Az, as)
	m.axes[GyroX].SetRaw(f.Gx, gs)
	m.axes[GyroY].SetRaw(f.Gy, gs)
	m.axes[GyroZ].SetRaw(f.Gz, gs)
	m.tempF = imu.TempF(f.Temp)
}

// Update reads one frame and runs drift correction and filtering on every
// axis. notMoving allows at-rest samples to refine the calibration.
func (m *MPU6050) Update(notMoving bool) error {
	if !m.calibrated {
		return ErrNotCalibrated
	}
	if err := m.ReadFrame(); err != nil {
		return err
	}
	for _, a := range m.axes {
		a.Process(notMoving)
	}
	return nil
}

// FilteredRateZ is the conditioned yaw rate in deg/s.
func (m *MPU6050) FilteredRateZ() float64 { return m.axes[GyroZ].Filtered() }

func (m *MPU6050) Axis(id AxisID) *AxisChannel { return m.axes[id] }

func (m *MPU6050) Config() DeviceConfig { return m.cfg }

// Frame returns the last raw frame.
func (m *MPU6050) Frame() imu.Frame { return m.frame }

func (m *MPU6050) TempF() float64 { return m.tempF }

// Available is false after a read timeout until the next good read.
func (m *MPU6050) Available() bool { return m.available }

func (m *MPU6050) Calibrated() bool { return m.calibrated }

// LastReadDuration is the time spent in the last successful ReadFrame.
func (m *MPU6050) LastReadDuration() time.Duration { return m.readTime }

// SpuriousFrames counts discarded all-zero frames.
func (m *MPU6050) SpuriousFrames() int { return m.spurious }

// Snapshot copies the current state of every axis into a Sample.
func (m *MPU6050) Snapshot(source string) imu.Sample {
	axis := func(id AxisID) imu.Axis {
		a := m.axes[id]
		return imu.Axis{
			Raw:       a.Raw(),
			Scaled:    a.Scaled(),
			Corrected: a.Corrected(),
			Filtered:  a.Filtered(),
			CalAvg:    a.Average(),
			CalStdDev: a.StdDev(),
		}
	}
	return imu.Sample{
		Source:     source,
		Time:       m.lastRead.Format(time.RFC3339Nano),
		AccelX:     axis(AccelX),
		AccelY:     axis(AccelY),
		AccelZ:     axis(AccelZ),
		GyroX:      axis(GyroX),
		GyroY:      axis(GyroY),
		GyroZ:      axis(GyroZ),
		TempF:      m.tempF,
		ReadTimeMS: float64(m.readTime) / float64(time.Millisecond),
		Available:  m.available,
	}
}
