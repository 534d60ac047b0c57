package sensors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestPeriphBusConfigure(t *testing.T) {
	ops := []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{0x19, 7}},
		{Addr: DefaultAddress, W: []byte{0x1A, 6}},
		{Addr: DefaultAddress, W: []byte{0x1B, 0x00}},
		{Addr: DefaultAddress, W: []byte{0x1C, 0x00}},
		{Addr: DefaultAddress, W: []byte{0x6B, 0x01}},
		{Addr: DefaultAddress, W: []byte{0x23, 0x00}},
		{Addr: DefaultAddress, W: []byte{0x38, 0x01}},
	}
	pb := &i2ctest.Playback{Ops: ops}
	m := mustDevice(t, NewPeriphBus(pb, DefaultAddress), DefaultDeviceConfig())

	require.NoError(t, m.Configure())
	require.NoError(t, pb.Close())
}

func TestPeriphBusReadFrame(t *testing.T) {
	pb := &i2ctest.Playback{Ops: []i2ctest.IO{
		{Addr: DefaultAddress, W: []byte{RegIntStatus}, R: []byte{0x00}},
		{Addr: DefaultAddress, W: []byte{RegIntStatus}, R: []byte{0x01}},
		{Addr: DefaultAddress, W: []byte{RegAccelXOutH}, R: []byte{
			0x40, 0x00, 0x00, 0x00, 0xC0, 0x00, // 1g, 0, -1g
			0x00, 0x00, // temp
			0x00, 0x83, 0x00, 0x00, 0xFF, 0x7D, // 1, 0, -1 deg/s
		}},
	}}
	m := mustDevice(t, NewPeriphBus(pb, DefaultAddress), DefaultDeviceConfig(),
		WithClock(newFakeClock(time.Millisecond)))

	require.NoError(t, m.ReadFrame())
	require.NoError(t, pb.Close())

	assert.Equal(t, 1.0, m.Axis(AccelX).Scaled())
	assert.Equal(t, -1.0, m.Axis(AccelZ).Scaled())
	assert.Equal(t, 1.0, m.Axis(GyroX).Scaled())
	assert.Equal(t, -1.0, m.Axis(GyroZ).Scaled())
}

func TestOpenBusSim(t *testing.T) {
	bus, err := OpenBus(BusConfig{Driver: "SIM"}, newFakeClock(time.Millisecond))
	require.NoError(t, err)
	assert.IsType(t, &SimBus{}, bus)

	_, err = OpenBus(BusConfig{Driver: "spi"}, nil)
	assert.Error(t, err)
}

func TestReadRegisters(t *testing.T) {
	sim := NewSimBus(newFakeClock(time.Millisecond), 1)
	require.NoError(t, sim.WriteReg(RegGyroConfig, 0x18))

	values, err := ReadRegisters(sim, RegisterMap())
	require.NoError(t, err)

	assert.Equal(t, byte(0x18), values[RegGyroConfig])
	assert.Equal(t, byte(0x68), values[RegWhoAmI])
	assert.Equal(t, byte(0x40), values[RegPwrMgmt1])
	_, ok := values[RegSignalPathReset]
	assert.False(t, ok)
}

func TestReadRegistersReportsFailures(t *testing.T) {
	values, err := ReadRegisters(&fakeBus{status: []byte{1}}, RegisterMap())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "WHO_AM_I")
	assert.Equal(t, byte(1), values[RegIntStatus])
}
