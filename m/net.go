package m

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

// DefaultLambda is the L2 regularization strength used when WithLambda is
// not given.
const DefaultLambda = 0.05

type options struct {
	seed   int64
	seeded bool
	lambda float64
}

// Option customizes NewNetwork.
type Option func(*options)

// WithSeed makes the He initialization deterministic.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.seeded = true
	}
}

// WithLambda sets the regularization strength read by the regularized
// backward pass and the regularized optimizer.
func WithLambda(lambda float64) Option {
	return func(o *options) {
		o.lambda = lambda
	}
}

// Network owns the parameters of a fully connected sigmoid/softmax network
// and the optimizer state that goes with them. weights[l] maps layer l to
// layer l+1 and has shape sizes[l+1] x sizes[l]; biases[l] is sizes[l+1] x 1.
type Network struct {
	sizes     []int
	weights   []*mat.Dense
	biases    []*mat.Dense
	optimizer Optimizer
	lambda    float64
	moments   *moments
}

// NewNetwork validates the layer sizes and optimizer and initializes weights
// with He-scaled normal values and biases with zeros.
func NewNetwork(sizes []int, optimizer Optimizer, opts ...Option) (*Network, error) {
	o := options{lambda: DefaultLambda}
	for _, opt := range opts {
		opt(&o)
	}

	if len(sizes) < 2 {
		return nil, configErrorf("need at least 2 layer sizes (input and output), got %d", len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, configErrorf("layer %d has non-positive size %d", i, s)
		}
	}
	if !optimizer.valid() {
		return nil, configErrorf("unknown optimizer %d", int(optimizer))
	}
	if o.lambda < 0 || math.IsNaN(o.lambda) || math.IsInf(o.lambda, 0) {
		return nil, configErrorf("lambda must be a finite value >= 0, got %g", o.lambda)
	}
	if !o.seeded {
		o.seed = time.Now().UnixNano()
	}

	src := rand.NewSource(uint64(o.seed))
	transitions := len(sizes) - 1
	net := &Network{
		sizes:     append([]int(nil), sizes...),
		weights:   make([]*mat.Dense, transitions),
		biases:    make([]*mat.Dense, transitions),
		optimizer: optimizer,
		lambda:    o.lambda,
	}
	for l := 0; l < transitions; l++ {
		net.weights[l] = heWeights(sizes[l+1], sizes[l], src)
		net.biases[l] = mat.NewDense(sizes[l+1], 1, nil)
	}
	if optimizer == AdaptiveMoment {
		net.moments = newMoments(net.weights, net.biases)
	}

	return net, nil
}

// Sizes returns a copy of the layer sizes.
func (net *Network) Sizes() []int {
	return append([]int(nil), net.sizes...)
}

func (net *Network) Optimizer() Optimizer {
	return net.optimizer
}

func (net *Network) Lambda() float64 {
	return net.lambda
}

func (net *Network) inputs() int {
	return net.sizes[0]
}

func (net *Network) classes() int {
	return net.sizes[len(net.sizes)-1]
}

// Parameters returns deep copies of the weight matrices and bias vectors.
func (net *Network) Parameters() (weights, biases []*mat.Dense) {
	weights = make([]*mat.Dense, len(net.weights))
	biases = make([]*mat.Dense, len(net.biases))
	for l := range net.weights {
		weights[l] = mat.DenseCopyOf(net.weights[l])
		biases[l] = mat.DenseCopyOf(net.biases[l])
	}
	return weights, biases
}

// SetParameters overwrites every weight and bias with a copy of the given
// values. Optimizer moments are left as they are.
func (net *Network) SetParameters(weights, biases []mat.Matrix) error {
	if len(weights) != len(net.weights) || len(biases) != len(net.biases) {
		return shapeErrorf("expected %d weight and bias arrays, got %d and %d",
			len(net.weights), len(weights), len(biases))
	}
	for l := range weights {
		if !sameShape(weights[l], net.weights[l]) {
			r, c := weights[l].Dims()
			return shapeErrorf("weights[%d] is %dx%d, want %dx%d", l, r, c, net.sizes[l+1], net.sizes[l])
		}
		if !sameShape(biases[l], net.biases[l]) {
			r, c := biases[l].Dims()
			return shapeErrorf("biases[%d] is %dx%d, want %dx1", l, r, c, net.sizes[l+1])
		}
	}
	for l := range weights {
		net.weights[l].Copy(weights[l])
		net.biases[l].Copy(biases[l])
	}
	return nil
}

// Clone returns an independent copy of the network including optimizer state.
func (net *Network) Clone() *Network {
	weights, biases := net.Parameters()
	c := &Network{
		sizes:     net.Sizes(),
		weights:   weights,
		biases:    biases,
		optimizer: net.optimizer,
		lambda:    net.lambda,
	}
	if net.moments != nil {
		c.moments = net.moments.clone()
	}
	return c
}

// Pass holds the intermediate values of a forward pass. A[0] is the input
// batch and A[len(A)-1] is Output.
type Pass struct {
	Output *mat.Dense
	Z      []*mat.Dense
	A      []mat.Matrix
}

// Forward runs the batch x (inputs x examples) through the network.
func (net *Network) Forward(x mat.Matrix) (*Pass, error) {
	if err := net.checkFeatures(x); err != nil {
		return nil, err
	}
	return net.forward(x), nil
}

func (net *Network) forward(x mat.Matrix) *Pass {
	last := len(net.weights) - 1
	pass := &Pass{
		Z: make([]*mat.Dense, 0, len(net.weights)),
		A: make([]mat.Matrix, 0, len(net.weights)+1),
	}
	pass.A = append(pass.A, x)

	activation := x
	for l, w := range net.weights {
		z := dot(w, activation)
		addBias(z, net.biases[l])
		pass.Z = append(pass.Z, z)

		var a *mat.Dense
		if l == last {
			a = Softmax(z)
			pass.Output = a
		} else {
			a = sigmoid(z)
		}
		pass.A = append(pass.A, a)
		activation = a
	}
	return pass
}

// Predict returns the most probable class of every column of x.
func (net *Network) Predict(x mat.Matrix) ([]int, error) {
	pass, err := net.Forward(x)
	if err != nil {
		return nil, err
	}
	_, n := pass.Output.Dims()
	classes := make([]int, n)
	for j := range classes {
		classes[j] = argmaxColumn(pass.Output, j)
	}
	return classes, nil
}

func (net *Network) checkFeatures(x mat.Matrix) error {
	if x == nil {
		return shapeErrorf("features are nil")
	}
	r, c := x.Dims()
	if r != net.inputs() {
		return shapeErrorf("features have %d rows, network expects %d inputs", r, net.inputs())
	}
	if c == 0 {
		return shapeErrorf("features have no examples")
	}
	return nil
}

// checkSplit validates a split against the network and itself.
func (net *Network) checkSplit(name string, s Split) error {
	if s.Features == nil || s.Labels == nil {
		return shapeErrorf("%s: features and labels are required", name)
	}
	if err := net.checkFeatures(s.Features); err != nil {
		return errors.WithMessage(err, name)
	}
	yr, yc := s.Labels.Dims()
	_, xc := s.Features.Dims()
	if yr != net.classes() {
		return shapeErrorf("%s: labels have %d rows, network has %d classes", name, yr, net.classes())
	}
	if yc != xc {
		return shapeErrorf("%s: %d feature columns but %d label columns", name, xc, yc)
	}
	return nil
}
