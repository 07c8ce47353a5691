package m

import (
	"gonum.org/v1/gonum/mat"
)

// Gradients mirrors the shapes of a network's weights and biases.
type Gradients struct {
	Weights []*mat.Dense
	Biases  []*mat.Dense
}

// Backward computes the unregularized gradients of the summed cross-entropy
// over the batch of pass with respect to every weight and bias.
func (net *Network) Backward(pass *Pass, target mat.Matrix) (*Gradients, error) {
	if err := net.checkPass(pass, target); err != nil {
		return nil, err
	}
	return net.backward(pass, target, 0), nil
}

// BackwardRegularized is Backward with (lambda/datasetSize)*W added to every
// weight gradient. datasetSize is the column count of the whole training
// split, not of the mini-batch.
func (net *Network) BackwardRegularized(pass *Pass, target mat.Matrix, datasetSize int) (*Gradients, error) {
	if datasetSize <= 0 {
		return nil, configErrorf("dataset size must be > 0 (got %d)", datasetSize)
	}
	if err := net.checkPass(pass, target); err != nil {
		return nil, err
	}
	return net.backward(pass, target, net.lambda/float64(datasetSize)), nil
}

// backward walks the layers from the output to the first hidden layer. l2 is
// the coefficient of the weight decay term; 0 disables it.
func (net *Network) backward(pass *Pass, target mat.Matrix, l2 float64) *Gradients {
	transitions := len(net.weights)
	grads := &Gradients{
		Weights: make([]*mat.Dense, transitions),
		Biases:  make([]*mat.Dense, transitions),
	}

	dZ := softmaxGrad(pass.Output, target)
	for l := transitions - 1; l >= 0; l-- {
		dW := dot(dZ, pass.A[l].T())
		if l2 != 0 {
			dW.Add(dW, scale(l2, net.weights[l]))
		}
		grads.Weights[l] = dW
		grads.Biases[l] = rowSum(dZ)

		if l > 0 {
			dAPrev := dot(net.weights[l].T(), dZ)
			dZ = multiply(dAPrev, sigmoidPrime(pass.Z[l-1]))
		}
	}
	return grads
}

func (net *Network) checkPass(pass *Pass, target mat.Matrix) error {
	if pass == nil || pass.Output == nil {
		return shapeErrorf("forward pass is empty")
	}
	if len(pass.Z) != len(net.weights) || len(pass.A) != len(net.weights)+1 {
		return shapeErrorf("forward pass has %d pre-activations and %d activations, network has %d layers",
			len(pass.Z), len(pass.A), len(net.sizes))
	}
	if target == nil || !sameShape(pass.Output, target) {
		r, c := pass.Output.Dims()
		return shapeErrorf("target must match the %dx%d output", r, c)
	}
	return nil
}
