package m

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Optimizer selects the parameter update rule. It is fixed when the network
// is constructed.
type Optimizer int

const (
	// Plain is W -= eta*dW, b -= eta*db.
	Plain Optimizer = iota
	// Regularized decays the weights before the gradient step:
	// W = (1 - lambda*eta/n)*W - eta*dW.
	Regularized
	// AdaptiveMoment keeps first and second moment estimates per parameter.
	AdaptiveMoment
)

// Adaptive-moment hyperparameters.
const (
	Beta1   = 0.9
	Beta2   = 0.999
	Epsilon = 1e-8
)

var optimizerNames = map[string]Optimizer{
	"plain":           Plain,
	"sgd":             Plain,
	"regularized":     Regularized,
	"sgd-l2":          Regularized,
	"adaptive-moment": AdaptiveMoment,
	"adam":            AdaptiveMoment,
}

// ParseOptimizer maps a configuration name onto an Optimizer.
func ParseOptimizer(name string) (Optimizer, error) {
	o, ok := optimizerNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, configErrorf("unknown optimizer %q", name)
	}
	return o, nil
}

func (o Optimizer) valid() bool {
	return o >= Plain && o <= AdaptiveMoment
}

func (o Optimizer) String() string {
	switch o {
	case Plain:
		return "plain"
	case Regularized:
		return "regularized"
	case AdaptiveMoment:
		return "adaptive-moment"
	default:
		return "unknown"
	}
}

// moments holds the adaptive-moment accumulators, one per parameter array.
// They start at zero and are never reset.
type moments struct {
	mW, vW []*mat.Dense
	mB, vB []*mat.Dense
}

func newMoments(weights, biases []*mat.Dense) *moments {
	zerosLike := func(src []*mat.Dense) []*mat.Dense {
		out := make([]*mat.Dense, len(src))
		for i, s := range src {
			r, c := s.Dims()
			out[i] = mat.NewDense(r, c, nil)
		}
		return out
	}
	return &moments{
		mW: zerosLike(weights),
		vW: zerosLike(weights),
		mB: zerosLike(biases),
		vB: zerosLike(biases),
	}
}

func (s *moments) clone() *moments {
	cp := func(src []*mat.Dense) []*mat.Dense {
		out := make([]*mat.Dense, len(src))
		for i, d := range src {
			out[i] = mat.DenseCopyOf(d)
		}
		return out
	}
	return &moments{mW: cp(s.mW), vW: cp(s.vW), mB: cp(s.mB), vB: cp(s.vB)}
}

// Moments returns copies of the first and second moment accumulators of
// weight l. Both are nil unless the optimizer is AdaptiveMoment.
func (net *Network) Moments(l int) (first, second *mat.Dense) {
	if net.moments == nil {
		return nil, nil
	}
	return mat.DenseCopyOf(net.moments.mW[l]), mat.DenseCopyOf(net.moments.vW[l])
}

// Update applies grads with learning rate eta under the network's optimizer.
// datasetSize is the training split column count used by Regularized.
func (net *Network) Update(grads *Gradients, eta float64, datasetSize int) error {
	if grads == nil || len(grads.Weights) != len(net.weights) || len(grads.Biases) != len(net.biases) {
		return shapeErrorf("gradients do not cover the %d layer transitions", len(net.weights))
	}
	for l := range net.weights {
		if !sameShape(grads.Weights[l], net.weights[l]) || !sameShape(grads.Biases[l], net.biases[l]) {
			return shapeErrorf("gradient %d does not match its parameter shape", l)
		}
	}
	if net.optimizer == Regularized && datasetSize <= 0 {
		return configErrorf("dataset size must be > 0 (got %d)", datasetSize)
	}
	net.update(grads, eta, datasetSize)
	return nil
}

func (net *Network) update(grads *Gradients, eta float64, datasetSize int) {
	switch net.optimizer {
	case Plain:
		for l := range net.weights {
			net.weights[l].Sub(net.weights[l], scale(eta, grads.Weights[l]))
			net.biases[l].Sub(net.biases[l], scale(eta, grads.Biases[l]))
		}
	case Regularized:
		decay := 1 - net.lambda*eta/float64(datasetSize)
		for l := range net.weights {
			net.weights[l].Scale(decay, net.weights[l])
			net.weights[l].Sub(net.weights[l], scale(eta, grads.Weights[l]))
			net.biases[l].Sub(net.biases[l], scale(eta, grads.Biases[l]))
		}
	case AdaptiveMoment:
		for l := range net.weights {
			adamStep(net.weights[l], grads.Weights[l], net.moments.mW[l], net.moments.vW[l], eta)
			adamStep(net.biases[l], grads.Biases[l], net.moments.mB[l], net.moments.vB[l], eta)
		}
	}
}

// adamStep updates m, v and param in place. The bias correction divides by
// the constants (1-Beta1) and (1-Beta2), not by (1-Beta^t).
func adamStep(param, grad, m, v *mat.Dense, eta float64) {
	var b1, b2, eps float64 = Beta1, Beta2, Epsilon
	r, c := param.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)
			mi := m.At(i, j)*b1 + (1-b1)*g
			vi := b2*v.At(i, j) + (1-b2)*(g*g)
			m.Set(i, j, mi)
			v.Set(i, j, vi)

			mHat := mi / (1 - b1)
			vHat := vi / (1 - b2)
			param.Set(i, j, param.At(i, j)-eta*(mHat/(math.Sqrt(vHat)+eps)))
		}
	}
}
