package NeuralNetwork

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"mlworkshop/pkg/core"
	"mlworkshop/pkg/data"
	"mlworkshop/pkg/optim"
)

// Dense is a fully connected layer: a = f(x W + b).
type Dense struct {
	W   *mat.Dense // in x out
	B   []float64
	Act Activation

	// forward cache for backprop
	in, z *mat.Dense
}

// Network is a stack of dense layers trained with backpropagation on
// the MSE loss.
type Network struct {
	Layers []*Dense
	rng    *rand.Rand
}

// NewNetwork builds input -> hidden... -> output layers. Hidden layers
// use the hidden activation, the output layer the output activation.
// Weights are Glorot-uniform initialised from seed.
func NewNetwork(inputs int, hidden []int, outputs int, hiddenAct, outputAct string, seed int64) (*Network, error) {
	if inputs < 1 || outputs < 1 {
		return nil, errors.Errorf("invalid network shape %d -> %v -> %d", inputs, hidden, outputs)
	}
	ha, err := ActivationByName(hiddenAct)
	if err != nil {
		return nil, err
	}
	oa, err := ActivationByName(outputAct)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	net := &Network{rng: rng}
	sizes := append(append([]int{inputs}, hidden...), outputs)
	for l := 1; l < len(sizes); l++ {
		in, out := sizes[l-1], sizes[l]
		if out < 1 {
			return nil, errors.Errorf("layer %d has size %d", l, out)
		}
		limit := math.Sqrt(6 / float64(in+out))
		w := make([]float64, in*out)
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * limit
		}
		act := ha
		if l == len(sizes)-1 {
			act = oa
		}
		net.Layers = append(net.Layers, &Dense{W: mat.NewDense(in, out, w), B: make([]float64, out), Act: act})
	}
	return net, nil
}

// Forward runs a batch through every layer, caching what Backward needs.
func (n *Network) Forward(X *mat.Dense) *mat.Dense {
	a := X
	for _, l := range n.Layers {
		l.in = a
		var z mat.Dense
		z.Mul(a, l.W)
		z.Apply(func(_, j int, v float64) float64 { return v + l.B[j] }, &z)
		l.z = &z
		var out mat.Dense
		out.Apply(func(_, _ int, v float64) float64 { return l.Act.F(v) }, &z)
		a = &out
	}
	return a
}

// backward propagates dA (gradient w.r.t. the network output) and
// applies one optimizer step to every layer.
func (n *Network) backward(dA *mat.Dense, opt optim.Optimizer) {
	for i := len(n.Layers) - 1; i >= 0; i-- {
		l := n.Layers[i]
		var dZ mat.Dense
		dZ.Apply(func(r, c int, v float64) float64 { return v * l.Act.Prime(l.z.At(r, c)) }, dA)

		var dW mat.Dense
		dW.Mul(l.in.T(), &dZ)
		rows, cols := dZ.Dims()
		dB := make([]float64, cols)
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				dB[c] += dZ.At(r, c)
			}
		}

		if i > 0 {
			var prev mat.Dense
			prev.Mul(&dZ, l.W.T())
			dA = &prev
		}

		opt.Step(2*i, l.W.RawMatrix().Data, dW.RawMatrix().Data)
		opt.Step(2*i+1, l.B, dB)
	}
}

// TrainConfig fixes the training schedule. There is no early stopping:
// the network always runs Epochs passes.
type TrainConfig struct {
	Epochs    int
	BatchSize int
	Optimizer optim.Optimizer
	// OnEpoch, when set, observes the mean training loss of each epoch.
	OnEpoch func(epoch int, loss float64)
}

// Train fits a single-output network to (X, y) and returns the mean
// batch loss of every epoch.
func (n *Network) Train(ctx context.Context, X [][]float64, y []float64, cfg TrainConfig) ([]float64, error) {
	rows, p, err := core.Validate(X)
	if err != nil {
		return nil, err
	}
	if len(y) != rows {
		return nil, errors.Wrapf(core.ErrShapeMismatch, "%d rows but %d targets", rows, len(y))
	}
	if in, _ := n.Layers[0].W.Dims(); in != p {
		return nil, errors.Wrapf(core.ErrShapeMismatch, "network expects %d inputs, got %d", in, p)
	}
	if _, out := n.Layers[len(n.Layers)-1].W.Dims(); out != 1 {
		return nil, errors.Errorf("train needs a single-output network, have %d outputs", out)
	}
	if cfg.Epochs < 1 || cfg.Optimizer == nil {
		return nil, errors.New("train needs a positive epoch count and an optimizer")
	}

	history := make([]float64, 0, cfg.Epochs)
	for ep := 0; ep < cfg.Epochs; ep++ {
		total, batches := 0.0, 0
		for b := range data.Batcher(ctx, X, y, cfg.BatchSize, n.rng) {
			xb, _ := core.FromRows(b.X)
			out := n.Forward(xb)
			loss, grad := MSE(b.Y, core.Column(out, 0))
			n.backward(mat.NewDense(len(grad), 1, grad), cfg.Optimizer)
			total += loss
			batches++
		}
		if err := ctx.Err(); err != nil {
			return history, errors.Wrapf(err, "training stopped at epoch %d", ep)
		}
		mean := total / float64(batches)
		history = append(history, mean)
		if cfg.OnEpoch != nil {
			cfg.OnEpoch(ep, mean)
		}
	}
	return history, nil
}

// Predict returns the first output unit for every row of X.
func (n *Network) Predict(X [][]float64) ([]float64, error) {
	m, err := core.FromRows(X)
	if err != nil {
		return nil, err
	}
	if in, _ := n.Layers[0].W.Dims(); in != len(X[0]) {
		return nil, errors.Wrapf(core.ErrShapeMismatch, "network expects %d inputs, got %d", in, len(X[0]))
	}
	return core.Column(n.Forward(m), 0), nil
}
