package m

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEvaluateIsIdempotent(t *testing.T) {
	net := newTestNetwork(t, []int{4, 5, 3}, AdaptiveMoment)
	s := randomSplit(t, 4, 3, 12, 2)
	before := net.Clone()
	features := mat.DenseCopyOf(s.Features)

	loss1, acc1, err := net.Evaluate(s)
	require.NoError(t, err)
	loss2, acc2, err := net.Evaluate(s)
	require.NoError(t, err)

	assert.Equal(t, loss1, loss2)
	assert.Equal(t, acc1, acc2)
	requireSameParameters(t, before, net)
	assert.True(t, mat.Equal(features, s.Features))
	m1, v1 := net.Moments(0)
	m2, v2 := before.Moments(0)
	assert.True(t, mat.Equal(m1, m2))
	assert.True(t, mat.Equal(v1, v2))
}

func TestEvaluateMatchesBatchForward(t *testing.T) {
	net := newTestNetwork(t, []int{3, 2}, Plain)
	// More examples than one evaluation chunk.
	s := randomSplit(t, 3, 2, evalChunk+300, 4)

	loss, acc, err := net.Evaluate(s)
	require.NoError(t, err)

	pass, err := net.Forward(s.Features)
	require.NoError(t, err)
	assert.InDelta(t, CrossEntropy(s.Labels, pass.Output), loss, 1e-9)

	pred, err := net.Predict(s.Features)
	require.NoError(t, err)
	correct := 0
	for j, p := range pred {
		if s.Labels.At(p, j) == 1 {
			correct++
		}
	}
	assert.Equal(t, float64(correct)/float64(s.Len()), acc)
}

func TestEvaluateTiesResolveToLowestClass(t *testing.T) {
	net := newTestNetwork(t, []int{2, 3}, Plain)
	setConstant(t, net, 0)

	labels := []int{0, 1, 2, 0, 1, 2}
	y, err := OneHot(labels, 3)
	require.NoError(t, err)
	s := Split{Features: mat.NewDense(2, len(labels), nil), Labels: y}
	s.Features.Set(0, 0, 1)

	_, acc, err := net.Evaluate(s)
	require.NoError(t, err)
	assert.InDelta(t, 2.0/6.0, acc, 1e-15)
}

func TestEvaluateShapeMismatch(t *testing.T) {
	net := newTestNetwork(t, []int{3, 2}, Plain)
	s := randomSplit(t, 3, 3, 4, 1)

	_, _, err := net.Evaluate(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}
