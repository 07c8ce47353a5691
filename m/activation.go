package m

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sigmoid is the logistic activation used by every hidden layer.
type Sigmoid struct{}

func (s Sigmoid) Activate(i, j int, z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Deactivate returns the derivative sigma(z) * (1 - sigma(z)) evaluated at the
// pre-activation z.
func (s Sigmoid) Deactivate(i, j int, z float64) float64 {
	a := s.Activate(i, j, z)
	return a * (1 - a)
}

func (s Sigmoid) String() string {
	return "sigmoid"
}

func sigmoid(z mat.Matrix) *mat.Dense {
	return apply(Sigmoid{}.Activate, z)
}

func sigmoidPrime(z mat.Matrix) *mat.Dense {
	return apply(Sigmoid{}.Deactivate, z)
}

// Softmax normalizes every column of z into a probability distribution.
// The column maximum is subtracted before exponentiating.
func Softmax(z mat.Matrix) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	column := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(column, j, z)
		softmaxVector(column)
		out.SetCol(j, column)
	}
	return out
}

func softmaxVector(v []float64) {
	peak := floats.Max(v)
	sum := 0.0
	for i, x := range v {
		e := math.Exp(x - peak)
		v[i] = e
		sum += e
	}
	floats.Scale(1/sum, v)
}
