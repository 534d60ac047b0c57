package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const dt = 0.02

func TestAngleEstimatorHoldsSeededAngle(t *testing.T) {
	k := NewAngleEstimator()
	k.SetAngle(10)

	for i := 0; i < 500; i++ {
		angle := k.Fuse(10, 0, dt)
		assert.InDelta(t, 10.0, angle, 1e-9)
	}
	assert.InDelta(t, 0.0, k.Bias(), 1e-9)
}

func TestAngleEstimatorConvergesToMeasurement(t *testing.T) {
	k := NewAngleEstimator()

	var angle float64
	for i := 0; i < 2000; i++ {
		angle = k.Fuse(5, 0, dt)
	}

	assert.InDelta(t, 5.0, angle, 1e-6)
	assert.InDelta(t, 0.0, k.Bias(), 1e-6)
}

func TestAngleEstimatorLearnsGyroBias(t *testing.T) {
	k := NewAngleEstimator()

	var angle float64
	for i := 0; i < 5000; i++ {
		angle = k.Fuse(0, 2, dt)
	}

	assert.InDelta(t, 0.0, angle, 1e-6)
	assert.InDelta(t, 2.0, k.Bias(), 1e-6)
	assert.InDelta(t, 0.0, k.Rate(), 1e-6)
}

func TestAngleEstimatorFirstStep(t *testing.T) {
	k := NewAngleEstimator()
	k.Fuse(1, 0, 1)

	// P00 = qAngle before the update, gain = .001/.031
	k0 := DefaultQAngle / (DefaultQAngle + DefaultRMeasure)
	assert.InDelta(t, k0, k.Angle(), 1e-15)

	p := k.Covariance()
	assert.InDelta(t, DefaultQAngle-k0*DefaultQAngle, p[0][0], 1e-15)
	assert.InDelta(t, DefaultQBias, p[1][1], 1e-15)
}

func TestAngleEstimatorSetAngleKeepsCovariance(t *testing.T) {
	k := NewAngleEstimator()
	k.Fuse(3, 1, dt)
	before := k.Covariance()

	k.SetAngle(42)

	assert.Equal(t, before, k.Covariance())
	assert.Equal(t, 42.0, k.Angle())
}

func TestAngleEstimatorTuning(t *testing.T) {
	k := NewAngleEstimator()
	k.SetQAngle(0.01)
	k.SetQBias(0.02)
	k.SetRMeasure(0.5)

	assert.Equal(t, 0.01, k.QAngle())
	assert.Equal(t, 0.02, k.QBias())
	assert.Equal(t, 0.5, k.RMeasure())
}
