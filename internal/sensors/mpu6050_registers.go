// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// DefaultAddress is the MPU6050 I2C address with AD0 tied low.
const DefaultAddress = 0x68

// MPU6050 registers.
const (
	RegSelfTestX       = 0x0D
	RegSelfTestY       = 0x0E
	RegSelfTestZ       = 0x0F
	RegSelfTestA       = 0x10
	RegSampleRateDiv   = 0x19
	RegConfig          = 0x1A
	RegGyroConfig      = 0x1B
	RegAccelConfig     = 0x1C
	RegFIFOEnable      = 0x23
	RegIntEnable       = 0x38
	RegIntStatus       = 0x3A
	RegAccelXOutH      = 0x3B
	RegTempOutH        = 0x41
	RegGyroXOutH       = 0x43
	RegSignalPathReset = 0x68
	RegPwrMgmt1        = 0x6B
	RegPwrMgmt2        = 0x6C
	RegWhoAmI          = 0x75
)

const (
	intDataReady   = 0x01 // INT_STATUS / INT_ENABLE bit 0
	clockPLLGyroX  = 0x01 // PWR_MGMT_1 CLKSEL
	defaultDivider = 7
	defaultDLPF    = 6
)

// BitField describes a bit range within a register.
type BitField struct {
	Bits        string `json:"bits"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo is register metadata used by the register dump tool.
type RegisterInfo struct {
	Address     byte       `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// RegisterMap returns metadata for the MPU6050 registers this pipeline
// touches, in address order.
func RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: RegSelfTestX, Name: "SELF_TEST_X", Description: "Gyro/accel X self-test", Access: "RW"},
		{Address: RegSelfTestY, Name: "SELF_TEST_Y", Description: "Gyro/accel Y self-test", Access: "RW"},
		{Address: RegSelfTestZ, Name: "SELF_TEST_Z", Description: "Gyro/accel Z self-test", Access: "RW"},
		{Address: RegSelfTestA, Name: "SELF_TEST_A", Description: "Accel self-test low bits", Access: "RW"},
		{Address: RegSampleRateDiv, Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro_Output_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: RegConfig, Name: "CONFIG", Description: "Configuration (DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: RegGyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: RegAccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},
		{Address: RegFIFOEnable, Name: "FIFO_EN", Description: "FIFO Enable", Access: "RW", Default: "0x00"},
		{Address: RegIntEnable, Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: RegIntStatus, Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status"},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status"},
			}},
		{Address: RegAccelXOutH, Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: RegAccelXOutH + 1, Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: RegAccelXOutH + 2, Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: RegAccelXOutH + 3, Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: RegAccelXOutH + 4, Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: RegAccelXOutH + 5, Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: RegTempOutH, Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: RegTempOutH + 1, Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: RegGyroXOutH, Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: RegGyroXOutH + 1, Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: RegGyroXOutH + 2, Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: RegGyroXOutH + 3, Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: RegGyroXOutH + 4, Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: RegGyroXOutH + 5, Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},
		{Address: RegSignalPathReset, Name: "SIGNAL_PATH_RESET", Description: "Signal Path Reset", Access: "W",
			BitFields: []BitField{
				{Bits: "2", Name: "GYRO_RESET", Description: "Reset gyro signal path"},
				{Bits: "1", Name: "ACCEL_RESET", Description: "Reset accel signal path"},
				{Bits: "0", Name: "TEMP_RESET", Description: "Reset temperature signal path"},
			}},
		{Address: RegPwrMgmt1, Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Disabled, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle mode", Values: "0=Disabled, 1=Cycle"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro"},
			}},
		{Address: RegPwrMgmt2, Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00"},
		{Address: RegWhoAmI, Name: "WHO_AM_I", Description: "Device ID (should be 0x68)", Access: "R", Default: "0x68"},
	}
}
