package m

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// dense builds a matrix from rows.
func dense(rows ...[]float64) *mat.Dense {
	data := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), len(rows[0]), data)
}

func constant(r, c int, v float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(r, c, data)
}

func newTestNetwork(t *testing.T, sizes []int, opt Optimizer, opts ...Option) *Network {
	t.Helper()
	net, err := NewNetwork(sizes, opt, append([]Option{WithSeed(7)}, opts...)...)
	require.NoError(t, err)
	return net
}

// randomSplit returns n examples with one-hot labels cycling through the
// classes.
func randomSplit(t *testing.T, inputs, classes, n int, seed int64) Split {
	t.Helper()
	net := newTestNetwork(t, []int{n, inputs}, Plain, WithSeed(seed))
	labels := make([]int, n)
	for j := range labels {
		labels[j] = j % classes
	}
	y, err := OneHot(labels, classes)
	require.NoError(t, err)
	x := sigmoid(net.weights[0])
	return Split{Features: x, Labels: y}
}

func requireSameParameters(t *testing.T, want, got *Network) {
	t.Helper()
	for l := range want.weights {
		require.True(t, mat.Equal(want.weights[l], got.weights[l]), "weights[%d] differ", l)
		require.True(t, mat.Equal(want.biases[l], got.biases[l]), "biases[%d] differ", l)
	}
}
