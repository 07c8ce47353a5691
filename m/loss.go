package m

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	clipEpsilon = 1e-12
	logShift    = 1e-9
)

// CrossEntropy returns the batch-averaged cross-entropy between one-hot
// targets and predicted distributions. Both matrices are classes x examples.
func CrossEntropy(target, pred mat.Matrix) float64 {
	loss, _ := crossEntropy(target, pred)
	return loss
}

// crossEntropy also reports how many predictions fell outside
// [clipEpsilon, 1-clipEpsilon] and were clamped.
func crossEntropy(target, pred mat.Matrix) (float64, int) {
	r, c := pred.Dims()
	sum := 0.0
	clipped := 0
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			p := pred.At(i, j)
			switch {
			case p < clipEpsilon:
				p = clipEpsilon
				clipped++
			case p > 1-clipEpsilon:
				p = 1 - clipEpsilon
				clipped++
			}
			if t := target.At(i, j); t != 0 {
				sum += t * math.Log(p+logShift)
			}
		}
	}
	return -sum / float64(c), clipped
}

// softmaxGrad is dL/dZ at the output layer for softmax followed by
// cross-entropy.
func softmaxGrad(output, target mat.Matrix) *mat.Dense {
	return subtract(output, target)
}
