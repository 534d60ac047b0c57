package sensors

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/imu_conditioner/internal/imu"
)

func mustDevice(t *testing.T, bus Bus, cfg DeviceConfig, opts ...Option) *MPU6050 {
	t.Helper()
	m, err := NewMPU6050(bus, cfg, opts...)
	require.NoError(t, err)
	return m
}

// fakeClock advances by step on every Now call.
type fakeClock struct {
	t     time.Time
	step  time.Duration
	slept time.Duration
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0), step: step}
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept += d
	c.t = c.t.Add(d)
}

type write struct{ reg, value byte }

// fakeBus replays scripted status bytes and data blocks.
type fakeBus struct {
	writes   []write
	failReg  map[byte]bool
	status   []byte // consumed per status read; the last value repeats
	blocks   [][imu.FrameSize]byte
	dataErrs []error

	statusReads int
	dataReads   int
}

func (b *fakeBus) WriteReg(reg, value byte) error {
	b.writes = append(b.writes, write{reg, value})
	if b.failReg[reg] {
		return errors.New("nack")
	}
	return nil
}

func (b *fakeBus) ReadReg(reg byte, buf []byte) error {
	switch reg {
	case RegIntStatus:
		b.statusReads++
		if len(b.status) == 0 {
			buf[0] = 0
			return nil
		}
		buf[0] = b.status[0]
		if len(b.status) > 1 {
			b.status = b.status[1:]
		}
		return nil
	case RegAccelXOutH:
		b.dataReads++
		if len(b.dataErrs) > 0 {
			err := b.dataErrs[0]
			b.dataErrs = b.dataErrs[1:]
			if err != nil {
				return err
			}
		}
		if len(b.blocks) == 0 {
			return errors.New("no data scripted")
		}
		copy(buf, b.blocks[0][:])
		if len(b.blocks) > 1 {
			b.blocks = b.blocks[1:]
		}
		return nil
	}
	return errors.New("unexpected read")
}

func (b *fakeBus) Close() error { return nil }

// block encodes ax, ay, az, temp, gx, gy, gz as a big-endian data block.
func block(words ...int16) [imu.FrameSize]byte {
	var b [imu.FrameSize]byte
	for i, w := range words {
		binary.BigEndian.PutUint16(b[2*i:], uint16(w))
	}
	return b
}
