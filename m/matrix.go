package m

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

func dot(m, n mat.Matrix) *mat.Dense {
	r, _ := m.Dims()
	_, c := n.Dims()
	o := mat.NewDense(r, c, nil)
	o.Mul(m, n)
	return o
}

func apply(fn func(i, j int, v float64) float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Apply(fn, m)
	return o
}

func scale(s float64, m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

func multiply(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.MulElem(m, n)
	return o
}

func subtract(m, n mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Sub(m, n)
	return o
}

// addBias adds the column vector b to every column of z in place.
func addBias(z *mat.Dense, b mat.Matrix) {
	z.Apply(func(i, j int, v float64) float64 {
		return v + b.At(i, 0)
	}, z)
}

// rowSum collapses the batch dimension, keeping the result as a column vector.
func rowSum(m mat.Matrix) *mat.Dense {
	r, _ := m.Dims()
	o := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		o.Set(i, 0, floats.Sum(mat.Row(nil, i, m)))
	}
	return o
}

// argmaxColumn returns the row index of the largest value in column j.
// Ties resolve to the lowest index.
func argmaxColumn(m mat.Matrix, j int) int {
	return floats.MaxIdx(mat.Col(nil, j, m))
}

// heWeights draws a rows x cols matrix from N(0, 2/cols).
func heWeights(rows, cols int, src rand.Source) *mat.Dense {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(2 / float64(cols)),
		Src:   src,
	}

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, data)
}

func sameShape(a, b mat.Matrix) bool {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	return ar == br && ac == bc
}
