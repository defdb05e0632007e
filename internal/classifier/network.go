// Package classifier evaluates the exported health classifier, a dense
// feed-forward network, on scaled feature vectors.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Classifier returns class probabilities for a scaled feature vector
type Classifier interface {
	Predict(ctx context.Context, x []float64) ([]float64, error)
}

// Activation names a layer's element-wise (or, for softmax, vector) output function.
type Activation string

const (
	Linear  Activation = "linear"
	ReLU    Activation = "relu"
	Sigmoid Activation = "sigmoid"
	Tanh    Activation = "tanh"
	Softmax Activation = "softmax"
)

var ErrShape = errors.New("shape mismatch")

// Layer is a dense layer; Weights is indexed [input][output].
type Layer struct {
	Weights    [][]float64 `json:"weights"`
	Bias       []float64   `json:"bias"`
	Activation Activation  `json:"activation"`
}

// Network is an immutable stack of dense layers.
type Network struct {
	InputDim int     `json:"input_dim"`
	Layers   []Layer `json:"layers"`
}

// Validate checks that consecutive layer shapes line up and activations are known.
func (n *Network) Validate() error {
	if len(n.Layers) == 0 {
		return fmt.Errorf("%w: network has no layers", ErrShape)
	}
	in := n.InputDim
	for li, l := range n.Layers {
		if len(l.Weights) != in {
			return fmt.Errorf("%w: layer %d has %d input rows, want %d", ErrShape, li, len(l.Weights), in)
		}
		out := len(l.Bias)
		if out == 0 {
			return fmt.Errorf("%w: layer %d has no units", ErrShape, li)
		}
		for r, row := range l.Weights {
			if len(row) != out {
				return fmt.Errorf("%w: layer %d row %d has %d columns, want %d", ErrShape, li, r, len(row), out)
			}
		}
		switch l.Activation {
		case Linear, ReLU, Sigmoid, Tanh, Softmax:
		default:
			return fmt.Errorf("layer %d: unsupported activation %q", li, l.Activation)
		}
		in = out
	}
	return nil
}

// OutputDim returns the number of classes.
func (n *Network) OutputDim() int {
	return len(n.Layers[len(n.Layers)-1].Bias)
}

// Predict runs a forward pass. ctx is checked before each layer.
func (n *Network) Predict(ctx context.Context, x []float64) ([]float64, error) {
	if len(x) != n.InputDim {
		return nil, fmt.Errorf("%w: input has %d features, want %d", ErrShape, len(x), n.InputDim)
	}
	act := x
	for _, l := range n.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		act = l.forward(act)
	}
	return act, nil
}

func (l Layer) forward(x []float64) []float64 {
	out := make([]float64, len(l.Bias))
	copy(out, l.Bias)
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		for j, w := range l.Weights[i] {
			out[j] += xi * w
		}
	}
	switch l.Activation {
	case ReLU:
		for j, v := range out {
			out[j] = math.Max(0, v)
		}
	case Sigmoid:
		for j, v := range out {
			out[j] = 1 / (1 + math.Exp(-v))
		}
	case Tanh:
		for j, v := range out {
			out[j] = math.Tanh(v)
		}
	case Softmax:
		softmax(out)
	}
	return out
}

func softmax(v []float64) {
	peak := math.Inf(-1)
	for _, x := range v {
		peak = math.Max(peak, x)
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - peak)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

// ArgMax returns the index and value of the largest probability.
func ArgMax(probs []float64) (int, float64) {
	best := -1
	bestP := math.Inf(-1)
	for i, p := range probs {
		if p > bestP {
			best, bestP = i, p
		}
	}
	return best, bestP
}
