package filters

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstOrderGeometricConvergence(t *testing.T) {
	const c = 3.0
	for _, k := range []float64{0.05, 0.23, 0.5, 0.7, 1.0} {
		f := NewFirstOrder(k)
		var out float64
		for n := 1; n <= 40; n++ {
			out = f.Filter(c)
			want := c * math.Pow(1-k, float64(n))
			assert.InDelta(t, want, math.Abs(out-c), 1e-12, "k=%v n=%d", k, n)
		}
	}
}

func TestFirstOrderReset(t *testing.T) {
	f := NewFirstOrder(0.5)
	f.Filter(10)
	f.Filter(10)
	f.Reset()

	assert.Equal(t, 5.0, f.Filter(10))
}

func TestFirstOrderSetK(t *testing.T) {
	f := NewFirstOrder(DefaultK)
	assert.Equal(t, 0.25, f.K())

	f.SetK(1)
	assert.Equal(t, 7.0, f.Filter(7))
}

func TestBiquadCoefficients(t *testing.T) {
	c := BiquadCoefficients(DefaultCutoffHz, DefaultBandwidth)

	assert.InDelta(t, 0.012969714586606554, c[0], 1e-12)
	assert.InDelta(t, 0.025939429173213107, c[1], 1e-12)
	assert.InDelta(t, 0.012969714586606554, c[2], 1e-12)
	assert.InDelta(t, -1.5994285363547296, c[3], 1e-12)
	assert.InDelta(t, 0.6513073947011557, c[4], 1e-12)

	// unity gain at DC
	assert.InDelta(t, 1.0, (c[0]+c[1]+c[2])/(1+c[3]+c[4]), 1e-12)
}

func TestSecondOrderSettlesOnConstant(t *testing.T) {
	f := NewDefaultSecondOrder()
	var out float64
	for i := 0; i < 300; i++ {
		out = f.Filter(3)
	}

	assert.InDelta(t, 3.0, out, 1e-9)
}

func TestSecondOrderDifferenceEquation(t *testing.T) {
	f := NewSecondOrderCoefficients([5]float64{1, 2, 3, 4, 5})

	// y0 = 1*1
	assert.Equal(t, 1.0, f.Filter(1))
	// y1 = 1*2 + 2*1 + 3*0 - 4*1 - 5*0
	assert.Equal(t, 0.0, f.Filter(2))
	// y2 = 1*0 + 2*2 + 3*1 - 4*0 - 5*1
	assert.Equal(t, 2.0, f.Filter(0))

	f.Reset()
	assert.Equal(t, 1.0, f.Filter(1))
	assert.Equal(t, [5]float64{1, 2, 3, 4, 5}, f.Coefficients())
}

func TestLowPassImplementations(t *testing.T) {
	for _, f := range []LowPass{NewFirstOrder(0.5), NewDefaultSecondOrder()} {
		f.Filter(1)
		f.Reset()
		assert.Equal(t, 0.0, f.Filter(0))
	}
}
