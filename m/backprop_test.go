package m

import (
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

func TestBackwardShapes(t *testing.T) {
	for _, sizes := range [][]int{
		{3, 2},
		{4, 3, 2},
		{6, 5, 4, 3},
		{10, 8, 8, 8, 4},
	} {
		t.Run(fmt.Sprint(sizes), func(t *testing.T) {
			net := newTestNetwork(t, sizes, Plain)
			s := randomSplit(t, sizes[0], sizes[len(sizes)-1], 7, 3)

			pass, err := net.Forward(s.Features)
			require.NoError(t, err)
			grads, err := net.Backward(pass, s.Labels)
			require.NoError(t, err)

			require.Len(t, grads.Weights, len(sizes)-1)
			require.Len(t, grads.Biases, len(sizes)-1)
			for l := range grads.Weights {
				assert.True(t, sameShape(grads.Weights[l], net.weights[l]), "dW[%d]", l)
				assert.True(t, sameShape(grads.Biases[l], net.biases[l]), "db[%d]", l)
			}
		})
	}
}

// summedLoss returns the cross-entropy summed over the batch, which is the
// quantity Backward differentiates.
func summedLoss(net *Network, s Split) float64 {
	return CrossEntropy(s.Labels, net.forward(s.Features).Output) * float64(s.Len())
}

func TestBackwardMatchesFiniteDifferences(t *testing.T) {
	net := newTestNetwork(t, []int{3, 4, 2}, Plain)
	s := randomSplit(t, 3, 2, 5, 9)

	pass, err := net.Forward(s.Features)
	require.NoError(t, err)
	grads, err := net.Backward(pass, s.Labels)
	require.NoError(t, err)

	settings := &fd.Settings{Formula: fd.Central, Step: 1e-5}
	check := func(name string, param, analytic *mat.Dense) {
		raw := param.RawMatrix().Data
		orig := append([]float64(nil), raw...)
		numeric := fd.Gradient(nil, func(x []float64) float64 {
			copy(raw, x)
			return summedLoss(net, s)
		}, orig, settings)
		copy(raw, orig)

		r, c := analytic.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				a := analytic.At(i, j)
				n := numeric[i*c+j]
				rel := math.Abs(a-n) / math.Max(math.Abs(a)+math.Abs(n), 1e-3)
				assert.Less(t, rel, 1e-4, "%s[%d,%d]: analytic %g numeric %g", name, i, j, a, n)
			}
		}
	}
	for l := range net.weights {
		check(fmt.Sprintf("W%d", l), net.weights[l], grads.Weights[l])
		check(fmt.Sprintf("b%d", l), net.biases[l], grads.Biases[l])
	}
}

func TestBackwardRegularizedAddsWeightDecay(t *testing.T) {
	net := newTestNetwork(t, []int{4, 3, 2}, Plain, WithLambda(0.5))
	s := randomSplit(t, 4, 2, 6, 5)
	const datasetSize = 40

	pass, err := net.Forward(s.Features)
	require.NoError(t, err)
	plain, err := net.Backward(pass, s.Labels)
	require.NoError(t, err)
	reg, err := net.BackwardRegularized(pass, s.Labels, datasetSize)
	require.NoError(t, err)

	coef := 0.5 / datasetSize
	for l := range net.weights {
		var want mat.Dense
		want.Scale(coef, net.weights[l])
		want.Add(&want, plain.Weights[l])
		assert.True(t, mat.EqualApprox(&want, reg.Weights[l], 1e-12), "dW[%d]", l)
		assert.True(t, mat.Equal(plain.Biases[l], reg.Biases[l]), "db[%d]", l)
	}
}

func TestBackwardRejectsBadInput(t *testing.T) {
	net := newTestNetwork(t, []int{3, 2}, Plain)
	s := randomSplit(t, 3, 2, 4, 1)
	pass, err := net.Forward(s.Features)
	require.NoError(t, err)

	_, err = net.Backward(pass, mat.NewDense(2, 3, nil))
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = net.Backward(nil, s.Labels)
	assert.True(t, errors.Is(err, ErrShapeMismatch))

	_, err = net.BackwardRegularized(pass, s.Labels, 0)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
