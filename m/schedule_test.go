package m

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduleDecays(t *testing.T) {
	s := Schedule{Base: 0.1, Decay: 0.01}
	prev := math.Inf(1)
	for it := 1; it <= 200; it++ {
		eta := s.At(it)
		assert.Less(t, eta, prev, "iteration %d", it)
		assert.Greater(t, eta, 0.0)
		prev = eta
	}
	assert.InDelta(t, 0.1*math.Exp(-0.5), s.At(50), 1e-15)
}

func TestScheduleWithoutDecay(t *testing.T) {
	s := Schedule{Base: 0.25}
	assert.Equal(t, 0.25, s.At(1))
	assert.Equal(t, 0.25, s.At(1000))
}
