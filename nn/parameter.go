// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/ivimnet/ivimnet/internal/nn"
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are matrices that receive gradients during training.
// They typically represent weights and biases of layers.
//
// Example:
//
//	// Create a weight parameter
//	weight := nn.NewParameter("weight", mat.NewDense(3, 8, nil))
//
//	// Access the value
//	w := weight.Value()
//
//	// Get gradient after backward pass
//	grad := weight.Grad()
//
// Methods:
//
//	Name() string
//	    Returns the parameter name (e.g., "weight", "bias").
//
//	Value() *mat.Dense
//	    Returns the parameter value, updated in place by optimizers.
//
//	Grad() *mat.Dense
//	    Returns the gradient (nil if not computed yet).
//
//	SetGrad(grad *mat.Dense)
//	    Sets the gradient.
//
//	ZeroGrad()
//	    Clears the gradient.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and value.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return nn.NewParameter(name, value)
}
