package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are matrices that receive gradients during training.
// They represent weights and biases of layers.
//
// Example:
//
//	weight := nn.NewParameter("weight", w)
//	grads := backend.Backward(loss)
//	weight.SetGrad(grads[weight.Value()])
type Parameter struct {
	name  string     // Parameter name (e.g., "weight", "bias")
	value *mat.Dense // The parameter matrix, updated in place by optimizers
	grad  *mat.Dense // Gradient (computed during backward pass)
}

// NewParameter creates a new trainable parameter.
//
// Parameters:
//   - name: Descriptive name for this parameter (e.g., "0.weight")
//   - value: The initialized parameter matrix
//
// Returns a new Parameter.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter matrix.
//
// The returned matrix is also the key under which the gradient tape
// stores this parameter's gradient.
func (p *Parameter) Value() *mat.Dense {
	return p.value
}

// Grad returns the gradient.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *mat.Dense {
	return p.grad
}

// SetGrad sets the gradient.
func (p *Parameter) SetGrad(grad *mat.Dense) {
	p.grad = grad
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// CollectGrads copies gradients out of a tape result onto the parameters.
// Parameters the loss does not depend on get a nil gradient.
func CollectGrads(params []*Parameter, grads map[*mat.Dense]*mat.Dense) {
	for _, p := range params {
		p.SetGrad(grads[p.value])
	}
}
