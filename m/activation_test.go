package m

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSoftmaxColumnsAreDistributions(t *testing.T) {
	cases := map[string]*mat.Dense{
		"small": dense(
			[]float64{0.1, -2, 3},
			[]float64{0.2, 0, 3},
			[]float64{-0.4, 5, 3},
		),
		"large": dense(
			[]float64{1000, -1000, 710},
			[]float64{999, -1001, 709},
			[]float64{0, -999, 800},
		),
	}
	for name, z := range cases {
		t.Run(name, func(t *testing.T) {
			out := Softmax(z)
			r, c := out.Dims()
			require.Equal(t, 3, r)
			require.Equal(t, 3, c)
			for j := 0; j < c; j++ {
				col := mat.Col(nil, j, out)
				for _, p := range col {
					assert.False(t, math.IsNaN(p))
					assert.GreaterOrEqual(t, p, 0.0)
				}
				assert.InDelta(t, 1.0, floats.Sum(col), 1e-6)
			}
		})
	}
}

func TestSoftmaxIsShiftInvariant(t *testing.T) {
	z := dense([]float64{1, 2}, []float64{3, -1})
	shifted := dense([]float64{101, 52}, []float64{103, 49})

	a := Softmax(z)
	b := Softmax(shifted)
	assert.True(t, mat.EqualApprox(a, b, 1e-12))
	assert.InDelta(t, 1/(1+math.Exp(2)), a.At(0, 0), 1e-12)
}

func TestSigmoid(t *testing.T) {
	z := dense([]float64{0, 50, -50, 1})
	a := sigmoid(z)
	assert.Equal(t, 0.5, a.At(0, 0))
	assert.InDelta(t, 1, a.At(0, 1), 1e-12)
	assert.InDelta(t, 0, a.At(0, 2), 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-1)), a.At(0, 3), 1e-15)

	d := sigmoidPrime(z)
	assert.Equal(t, 0.25, d.At(0, 0))
	s := a.At(0, 3)
	assert.Equal(t, s*(1-s), d.At(0, 3))
	assert.Equal(t, "sigmoid", Sigmoid{}.String())
}
