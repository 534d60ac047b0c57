// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-ini/ini"

	"github.com/relabs-tech/imu_conditioner/internal/filters"
	"github.com/relabs-tech/imu_conditioner/internal/sensors"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDWeb      string
	MQTTClientIDDisplay  string

	// Topics
	TopicIMU     string // conditioned sample, published every loop
	TopicPose    string // roll/pitch/yaw
	TopicHeading string // heading angle and rate for the drive controller
	TopicDrive   string // drive commands, subscribed for the motion gate

	// IMU bus
	IMUBusDriver    string // periph, d2r2 or sim
	IMUI2CBus       string // periph bus name, empty for the first bus
	IMUI2CBusNumber int    // d2r2: N in /dev/i2c-N
	IMUI2CAddr      uint8
	IMUSimSeed      int64

	// IMU sensor ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange byte

	// IMU sample rate
	IMUDLPFConfig    byte // 0-7
	IMUSampleRateDiv byte // output rate = internal rate / (1 + div)

	// Read protocol
	IMUReadDeadline       time.Duration
	IMUPollInterval       time.Duration
	IMUCalibrationSamples int
	IMUWindowSize         int

	// Filters
	FilterOrder     int // 1 = first order, 2 = biquad
	LPFAccelK       float64
	LPFGyroXYK      float64
	LPFGyroZK       float64
	BiquadCutoffHz  float64
	BiquadBandwidth float64

	// Kalman
	KalmanQAngle   float64
	KalmanQBias    float64
	KalmanRMeasure float64

	// Timing
	IMUSampleInterval  time.Duration
	ConsoleLogInterval time.Duration

	// Debug files
	DebugFiles     bool
	DebugDir       string
	DebugRetention time.Duration // 0 keeps every run
	DebugMaxLines  int           // rows buffered per file before a save

	// Logging
	LogLevel  string
	LogFormat string

	// Web server
	WebServerPort int

	// Display
	DisplayI2CBus         string
	DisplayUpdateInterval time.Duration
}

// Default returns a configuration that runs against the simulated IMU
// and a local broker.
func Default() *Config {
	return &Config{
		MQTTBroker:           "tcp://localhost:1883",
		MQTTClientIDProducer: "imu-producer",
		MQTTClientIDConsole:  "imu-console",
		MQTTClientIDWeb:      "imu-web",
		MQTTClientIDDisplay:  "imu-display",

		TopicIMU:     "imu/sample",
		TopicPose:    "imu/pose",
		TopicHeading: "imu/heading",
		TopicDrive:   "drive/command",

		IMUBusDriver:    sensors.DriverSim,
		IMUI2CBusNumber: 1,
		IMUI2CAddr:      sensors.DefaultAddress,
		IMUSimSeed:      1,

		IMUAccelRange:    byte(sensors.Accel2G),
		IMUGyroRange:     byte(sensors.Gyro250DPS),
		IMUDLPFConfig:    6,
		IMUSampleRateDiv: 7,

		IMUReadDeadline:       sensors.DefaultDeadline,
		IMUCalibrationSamples: sensors.DefaultCalibrationSamples,
		IMUWindowSize:         sensors.DefaultWindowSize,

		FilterOrder:     1,
		LPFAccelK:       0.5,
		LPFGyroXYK:      0.7,
		LPFGyroZK:       0.23,
		BiquadCutoffHz:  filters.DefaultCutoffHz,
		BiquadBandwidth: filters.DefaultBandwidth,

		KalmanQAngle:   filters.DefaultQAngle,
		KalmanQBias:    filters.DefaultQBias,
		KalmanRMeasure: filters.DefaultRMeasure,

		IMUSampleInterval:  20 * time.Millisecond,
		ConsoleLogInterval: time.Second,

		DebugDir:      "runs",
		DebugMaxLines: 30000,

		LogLevel:  "info",
		LogFormat: "console",

		WebServerPort: 8080,

		DisplayUpdateInterval: 500 * time.Millisecond,
	}
}

// Load reads a KEY=VALUE configuration file on top of Default.
func Load(configPath string) (*Config, error) {
	f, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return fromINI(f)
}

// Parse is Load for in-memory content.
func Parse(data []byte) (*Config, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return fromINI(f)
}

func fromINI(f *ini.File) (*Config, error) {
	cfg := Default()
	for _, s := range f.Sections() {
		if s.Name() != ini.DefaultSection && len(s.Keys()) > 0 {
			return nil, fmt.Errorf("unexpected section [%s]", s.Name())
		}
	}
	for _, k := range f.Section(ini.DefaultSection).Keys() {
		if err := cfg.setValue(k); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(k *ini.Key) error {
	var err error
	switch k.Name() {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = k.String()
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = k.String()
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = k.String()
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = k.String()
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = k.String()

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = k.String()
	case "TOPIC_POSE":
		c.TopicPose = k.String()
	case "TOPIC_HEADING":
		c.TopicHeading = k.String()
	case "TOPIC_DRIVE":
		c.TopicDrive = k.String()

	// IMU bus
	case "IMU_BUS_DRIVER":
		c.IMUBusDriver = k.String()
	case "IMU_I2C_BUS":
		c.IMUI2CBus = k.String()
	case "IMU_I2C_BUS_NUMBER":
		c.IMUI2CBusNumber, err = intIn(k, 0, 255)
	case "IMU_I2C_ADDR":
		var v int
		v, err = intIn(k, 0x03, 0x77)
		c.IMUI2CAddr = uint8(v)
	case "IMU_SIM_SEED":
		c.IMUSimSeed, err = k.Int64()

	// IMU sensor ranges
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = byteIn(k, 3, "0=±2g, 1=±4g, 2=±8g, 3=±16g")
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = byteIn(k, 3, "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s")

	// IMU sample rate
	case "IMU_DLPF_CFG":
		c.IMUDLPFConfig, err = byteIn(k, 7, "")
	case "IMU_SMPLRT_DIV":
		c.IMUSampleRateDiv, err = byteIn(k, 255, "")

	// Read protocol
	case "IMU_READ_DEADLINE_MS":
		c.IMUReadDeadline, err = duration(k, time.Millisecond, 1)
	case "IMU_POLL_INTERVAL_US":
		c.IMUPollInterval, err = duration(k, time.Microsecond, 0)
	case "IMU_CALIBRATION_SAMPLES":
		c.IMUCalibrationSamples, err = intIn(k, 1, 100000)
	case "IMU_WINDOW_SIZE":
		c.IMUWindowSize, err = intIn(k, 1, 100000)

	// Filters
	case "FILTER_ORDER":
		c.FilterOrder, err = intIn(k, 1, 2)
	case "LPF_ACCEL_K":
		c.LPFAccelK, err = gain(k)
	case "LPF_GYRO_XY_K":
		c.LPFGyroXYK, err = gain(k)
	case "LPF_GYRO_Z_K":
		c.LPFGyroZK, err = gain(k)
	case "BIQUAD_CUTOFF_HZ":
		c.BiquadCutoffHz, err = positive(k)
	case "BIQUAD_BANDWIDTH":
		c.BiquadBandwidth, err = positive(k)

	// Kalman
	case "KALMAN_Q_ANGLE":
		c.KalmanQAngle, err = positive(k)
	case "KALMAN_Q_BIAS":
		c.KalmanQBias, err = positive(k)
	case "KALMAN_R_MEASURE":
		c.KalmanRMeasure, err = positive(k)

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = duration(k, time.Millisecond, 1)
	case "CONSOLE_LOG_INTERVAL":
		c.ConsoleLogInterval, err = duration(k, time.Millisecond, 1)

	// Debug files
	case "DEBUG_FILES":
		c.DebugFiles, err = k.Bool()
	case "DEBUG_DIR":
		c.DebugDir = k.String()
	case "DEBUG_RETENTION_DAYS":
		c.DebugRetention, err = duration(k, 24*time.Hour, 0)
	case "DEBUG_MAX_LINES":
		c.DebugMaxLines, err = intIn(k, 1, 1_000_000)

	// Logging
	case "LOG_LEVEL":
		c.LogLevel = k.String()
	case "LOG_FORMAT":
		c.LogFormat = k.String()

	// Web server
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = intIn(k, 1, 65535)

	// Display
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = k.String()
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = duration(k, time.Millisecond, 1)

	default:
		return fmt.Errorf("unknown config key: %q", k.Name())
	}

	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", k.Name(), k.String(), err)
	}
	return nil
}

// intIn accepts decimal or 0x-prefixed values.
func intIn(k *ini.Key, min, max int) (int, error) {
	v64, err := strconv.ParseInt(strings.TrimSpace(k.String()), 0, 64)
	if err != nil {
		return 0, err
	}
	v := int(v64)
	if v < min || v > max {
		return 0, fmt.Errorf("must be %d-%d, got %d", min, max, v)
	}
	return v, nil
}

func byteIn(k *ini.Key, max int, legend string) (byte, error) {
	v, err := intIn(k, 0, max)
	if err != nil && legend != "" {
		return 0, fmt.Errorf("%w (%s)", err, legend)
	}
	return byte(v), err
}

func duration(k *ini.Key, unit time.Duration, min int) (time.Duration, error) {
	v, err := k.Int()
	if err != nil {
		return 0, err
	}
	if v < min {
		return 0, fmt.Errorf("must be at least %d", min)
	}
	return time.Duration(v) * unit, nil
}

func gain(k *ini.Key) (float64, error) {
	v, err := k.Float64()
	if err != nil {
		return 0, err
	}
	if v <= 0 || v > 1 {
		return 0, fmt.Errorf("must be in (0,1], got %g", v)
	}
	return v, nil
}

func positive(k *ini.Key) (float64, error) {
	v, err := k.Float64()
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("must be positive, got %g", v)
	}
	return v, nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	switch c.IMUBusDriver {
	case sensors.DriverPeriph, sensors.DriverD2R2, sensors.DriverSim:
	default:
		return fmt.Errorf("IMU_BUS_DRIVER must be periph, d2r2 or sim, got %q", c.IMUBusDriver)
	}
	if c.TopicIMU == "" || c.TopicHeading == "" {
		return fmt.Errorf("TOPIC_IMU and TOPIC_HEADING are required")
	}
	if c.IMUCalibrationSamples > c.IMUWindowSize {
		return fmt.Errorf("IMU_CALIBRATION_SAMPLES (%d) exceeds IMU_WINDOW_SIZE (%d)",
			c.IMUCalibrationSamples, c.IMUWindowSize)
	}
	if c.FilterOrder == 2 && c.BiquadBandwidth <= c.BiquadCutoffHz {
		return fmt.Errorf("BIQUAD_BANDWIDTH must exceed BIQUAD_CUTOFF_HZ")
	}
	return nil
}

// DeviceConfig builds the MPU6050 configuration.
func (c *Config) DeviceConfig() sensors.DeviceConfig {
	d := sensors.DefaultDeviceConfig()
	d.AccelRange = sensors.AccelRange(c.IMUAccelRange)
	d.GyroRange = sensors.GyroRange(c.IMUGyroRange)
	d.SampleRateDiv = c.IMUSampleRateDiv
	d.DLPFMode = c.IMUDLPFConfig
	d.Deadline = c.IMUReadDeadline
	d.PollInterval = c.IMUPollInterval
	d.CalibrationSamples = c.IMUCalibrationSamples

	gains := [sensors.NumAxes]float64{
		c.LPFAccelK, c.LPFAccelK, c.LPFAccelK,
		c.LPFGyroXYK, c.LPFGyroXYK, c.LPFGyroZK,
	}
	for i := range d.Axes {
		d.Axes[i].WindowSize = c.IMUWindowSize
		d.Axes[i].Filter = sensors.FilterSpec{
			Order:     c.FilterOrder,
			K:         gains[i],
			CutoffHz:  c.BiquadCutoffHz,
			Bandwidth: c.BiquadBandwidth,
		}
	}
	return d
}

// BusConfig builds the IMU bus selection.
func (c *Config) BusConfig() sensors.BusConfig {
	return sensors.BusConfig{
		Driver:     c.IMUBusDriver,
		PeriphName: c.IMUI2CBus,
		D2R2Bus:    c.IMUI2CBusNumber,
		Address:    c.IMUI2CAddr,
		SimSeed:    c.IMUSimSeed,
	}
}
