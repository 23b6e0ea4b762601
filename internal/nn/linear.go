package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input batch with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias row with shape [1, out_features]
//   - y is the output batch with shape [batch_size, out_features]
//
// Weights and biases are both drawn from U(-1/√in, 1/√in).
//
// Example:
//
//	backend := autodiff.New()
//	layer := nn.NewLinear(8, 8, backend, rand.NewPCG(1, 2))
//	output := layer.Forward(input) // shape: [batch, 8]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [1, out_features]
	backend     *autodiff.Backend
}

// NewLinear creates a new Linear layer.
//
// Parameters:
//   - inFeatures: Number of input features
//   - outFeatures: Number of output features
//   - backend: Backend used for the forward computation
//   - src: Random source for initialization
//
// Returns a new Linear layer.
func NewLinear(inFeatures, outFeatures int, backend *autodiff.Backend, src rand.Source) *Linear {
	bound := FanInBound(inFeatures)
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", Uniform(outFeatures, inFeatures, bound, src)),
		bias:        NewParameter("bias", Uniform(1, outFeatures, bound, src)),
		backend:     backend,
	}
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *mat.Dense) *mat.Dense {
	_, c := input.Dims()
	if c != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, c))
	}

	output := l.backend.MatMulTrans(input, l.weight.Value())
	return l.backend.AddRow(output, l.bias.Value())
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns copies of the layer's parameters keyed by name.
func (l *Linear) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{
		"weight": mat.DenseCopyOf(l.weight.Value()),
		"bias":   mat.DenseCopyOf(l.bias.Value()),
	}
}

// LoadStateDict copies parameters from a state dictionary into the layer.
func (l *Linear) LoadStateDict(stateDict map[string]*mat.Dense) error {
	for _, p := range l.Parameters() {
		src, ok := stateDict[p.Name()]
		if !ok {
			return errors.Errorf("missing %s in state dict", p.Name())
		}
		wr, wc := p.Value().Dims()
		sr, sc := src.Dims()
		if wr != sr || wc != sc {
			return errors.Errorf("%s shape mismatch: expected [%d %d], got [%d %d]", p.Name(), wr, wc, sr, sc)
		}
		p.Value().Copy(src)
	}
	return nil
}
