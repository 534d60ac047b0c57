package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatAccumulatorEvictsOldest(t *testing.T) {
	a := NewStatAccumulator(4)
	for _, x := range []float64{100, 1, 2, 3, 4} {
		a.Accumulate(x)
	}

	assert.Equal(t, 4, a.Count())
	assert.InDelta(t, 2.5, a.Average(), 1e-12)
}

func TestStatAccumulatorWrapsManyTimes(t *testing.T) {
	a := NewStatAccumulator(3)
	for i := 1; i <= 10; i++ {
		a.Accumulate(float64(i))
	}

	// window holds 8, 9, 10
	assert.Equal(t, 3, a.Count())
	assert.InDelta(t, 9.0, a.Average(), 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), a.StdDeviation(), 1e-12)
}

func TestStatAccumulatorPartialWindow(t *testing.T) {
	a := NewStatAccumulator(100)
	a.Accumulate(2)
	a.Accumulate(4)

	assert.Equal(t, 2, a.Count())
	assert.InDelta(t, 3.0, a.Average(), 1e-12)
	// population deviation, divides by count
	assert.InDelta(t, 1.0, a.StdDeviation(), 1e-12)
}

func TestStatAccumulatorIdenticalValues(t *testing.T) {
	a := NewStatAccumulator(10)
	for i := 0; i < 25; i++ {
		a.Accumulate(0.75)
	}

	assert.Equal(t, 0.0, a.StdDeviation())
	assert.Equal(t, 0.75, a.Average())
}

func TestStatAccumulatorEmpty(t *testing.T) {
	a := NewStatAccumulator(5)

	assert.True(t, math.IsNaN(a.Average()))
	assert.True(t, math.IsNaN(a.StdDeviation()))
}

func TestStatAccumulatorFilterAndReset(t *testing.T) {
	a := NewStatAccumulator(2)

	assert.Equal(t, 4.0, a.Filter(4))
	assert.Equal(t, 5.0, a.Filter(6))
	assert.Equal(t, 7.0, a.Filter(8))

	a.Reset()
	assert.Equal(t, 0, a.Count())
	assert.Equal(t, 1.0, a.Filter(1))
}

func TestStatAccumulatorRejectsEmptyWindow(t *testing.T) {
	assert.Panics(t, func() { NewStatAccumulator(0) })
}
