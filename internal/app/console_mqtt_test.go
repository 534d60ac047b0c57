package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/relabs-tech/imu_conditioner/internal/imu"
	"github.com/relabs-tech/imu_conditioner/internal/orientation"
)

func TestFormatSample(t *testing.T) {
	s := imu.Sample{
		AccelZ:     imu.Axis{Filtered: 1},
		GyroZ:      imu.Axis{Filtered: -2.5},
		TempF:      77,
		ReadTimeMS: 1.25,
		Available:  true,
	}

	line := formatSample(s)

	assert.Contains(t, line, "1.000")
	assert.Contains(t, line, "-2.500")
	assert.Contains(t, line, "77.0°F")
	assert.Contains(t, line, "read= 1.25ms")
	assert.True(t, strings.HasSuffix(line, "OK"))

	s.Available = false
	assert.True(t, strings.HasSuffix(formatSample(s), "UNAVAILABLE"))
}

func TestFormatPoseAndHeading(t *testing.T) {
	assert.Equal(t, "[POSE] ROLL=   1.50  PITCH=  -2.00  YAW= 180.00",
		formatPose(orientation.Pose{Roll: 1.5, Pitch: -2, Yaw: 180}))
	assert.Equal(t, "[HDG ] ANGLE=  370.00  RATE=   0.25 °/s",
		formatHeading(imu.Heading{Angle: 370, AngleRate: 0.25}))
}

func TestThrottledPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newThrottledPrinter(&buf, time.Second)
	now := time.Unix(0, 0)
	p.now = func() time.Time { return now }

	p.print("imu", "a")
	p.print("imu", "b")
	p.print("pose", "c")
	now = now.Add(time.Second)
	p.print("imu", "d")

	assert.Equal(t, "a\nc\nd\n", buf.String())
}
