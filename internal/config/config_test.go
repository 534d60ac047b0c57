package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_conditioner/internal/sensors"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
# IMU
MQTT_BROKER=tcp://broker:1883
IMU_BUS_DRIVER=d2r2
IMU_I2C_BUS_NUMBER=2
IMU_I2C_ADDR=0x69
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=1
IMU_READ_DEADLINE_MS=250
IMU_POLL_INTERVAL_US=500
LPF_GYRO_Z_K=0.4
DEBUG_FILES=true
DEBUG_RETENTION_DAYS=3
DEBUG_MAX_LINES=500
`))
	require.NoError(t, err)

	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, sensors.DriverD2R2, cfg.IMUBusDriver)
	assert.Equal(t, 2, cfg.IMUI2CBusNumber)
	assert.Equal(t, uint8(0x69), cfg.IMUI2CAddr)
	assert.Equal(t, 250*time.Millisecond, cfg.IMUReadDeadline)
	assert.Equal(t, 500*time.Microsecond, cfg.IMUPollInterval)
	assert.Equal(t, 0.4, cfg.LPFGyroZK)
	assert.True(t, cfg.DebugFiles)
	assert.Equal(t, 72*time.Hour, cfg.DebugRetention)
	assert.Equal(t, 500, cfg.DebugMaxLines)

	// untouched keys keep their defaults
	assert.Equal(t, "imu/heading", cfg.TopicHeading)
	assert.Equal(t, 0.7, cfg.LPFGyroXYK)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "NOPE=1",
		"accel range":       "IMU_ACCEL_RANGE=4",
		"gyro range":        "IMU_GYRO_RANGE=-1",
		"dlpf":              "IMU_DLPF_CFG=8",
		"divider":           "IMU_SMPLRT_DIV=256",
		"not a number":      "IMU_SMPLRT_DIV=fast",
		"gain":              "LPF_ACCEL_K=1.5",
		"deadline":          "IMU_READ_DEADLINE_MS=0",
		"driver":            "IMU_BUS_DRIVER=spi",
		"broker":            "MQTT_BROKER=",
		"section":           "[imu]\nIMU_ACCEL_RANGE=1",
		"window":            "IMU_CALIBRATION_SAMPLES=200",
		"biquad":            "FILTER_ORDER=2\nBIQUAD_CUTOFF_HZ=3\nBIQUAD_BANDWIDTH=2",
		"kalman":            "KALMAN_R_MEASURE=0",
		"filter order":      "FILTER_ORDER=3",
		"display interval":  "DISPLAY_UPDATE_INTERVAL=0",
		"debug files":       "DEBUG_FILES=maybe",
		"debug max lines":   "DEBUG_MAX_LINES=0",
		"web port":          "WEB_SERVER_PORT=70000",
		"console interval":  "CONSOLE_LOG_INTERVAL=0",
		"calibration count": "IMU_CALIBRATION_SAMPLES=0",
	}
	for name, data := range cases {
		_, err := Parse([]byte(data))
		assert.Error(t, err, name)
	}
}

func TestParseErrorNamesKey(t *testing.T) {
	_, err := Parse([]byte("IMU_ACCEL_RANGE=9"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMU_ACCEL_RANGE")
	assert.Contains(t, err.Error(), "±16g")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imu_config.txt")
	require.NoError(t, os.WriteFile(path, []byte("WEB_SERVER_PORT=9090\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.WebServerPort)

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}

func TestDeviceConfig(t *testing.T) {
	cfg := Default()
	cfg.IMUAccelRange = 3
	cfg.IMUGyroRange = 2
	cfg.IMUWindowSize = 50
	cfg.IMUCalibrationSamples = 40
	cfg.FilterOrder = 2

	d := cfg.DeviceConfig()

	assert.Equal(t, sensors.Accel16G, d.AccelRange)
	assert.Equal(t, sensors.Gyro1000DPS, d.GyroRange)
	assert.Equal(t, byte(7), d.SampleRateDiv)
	assert.Equal(t, byte(6), d.DLPFMode)
	assert.Equal(t, time.Second, d.Deadline)
	assert.Equal(t, 40, d.CalibrationSamples)
	assert.Equal(t, 50, d.Axes[sensors.GyroZ].WindowSize)
	assert.Equal(t, 2, d.Axes[sensors.GyroZ].Filter.Order)
	assert.Equal(t, 0.23, d.Axes[sensors.GyroZ].Filter.K)
	assert.Equal(t, 0.7, d.Axes[sensors.GyroX].Filter.K)
	assert.Equal(t, 0.5, d.Axes[sensors.AccelY].Filter.K)
	assert.Equal(t, 1.0, d.Axes[sensors.AccelZ].NominalRest)
}

func TestBusConfig(t *testing.T) {
	cfg := Default()
	cfg.IMUBusDriver = sensors.DriverPeriph
	cfg.IMUI2CBus = "I2C1"

	b := cfg.BusConfig()

	assert.Equal(t, sensors.DriverPeriph, b.Driver)
	assert.Equal(t, "I2C1", b.PeriphName)
	assert.Equal(t, uint8(0x68), b.Address)
}
