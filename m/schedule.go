package m

import "math"

// Schedule is the exponential learning-rate decay eta * exp(-decay * iteration).
type Schedule struct {
	Base  float64
	Decay float64
}

// At returns the effective learning rate for the given iteration index. The
// index advances once per epoch.
func (s Schedule) At(iteration int) float64 {
	return s.Base * math.Exp(-s.Decay*float64(iteration))
}
