// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/ivimnet/ivimnet/internal/nn"
)

// Layers

// Linear represents a fully connected (dense) layer.
type Linear = nn.Linear

// NewLinear creates a new linear layer with weights and biases drawn from
// U(-1/sqrt(in), 1/sqrt(in)).
//
// Example:
//
//	backend := autodiff.New()
//	layer := nn.NewLinear(8, 3, backend, rand.NewPCG(1, 2))
func NewLinear(inFeatures, outFeatures int, backend *autodiff.Backend, src rand.Source) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, backend, src)
}

// Activations

// ELU represents the Exponential Linear Unit activation function.
type ELU = nn.ELU

// NewELU creates a new ELU activation layer.
//
// Example:
//
//	elu := nn.NewELU(1.0, backend)
func NewELU(alpha float64, backend *autodiff.Backend) *ELU {
	return nn.NewELU(alpha, backend)
}

// Abs represents the elementwise absolute value.
type Abs = nn.Abs

// NewAbs creates a new absolute value layer.
func NewAbs(backend *autodiff.Backend) *Abs {
	return nn.NewAbs(backend)
}

// Loss Functions

// MSELoss represents the Mean Squared Error loss.
type MSELoss = nn.MSELoss

// NewMSELoss creates a new MSE loss function.
//
// Example:
//
//	criterion := nn.NewMSELoss(backend)
//	loss := criterion.Forward(predictions, targets)
func NewMSELoss(backend *autodiff.Backend) *MSELoss {
	return nn.NewMSELoss(backend)
}

// Containers

// Sequential represents a sequential container of modules.
type Sequential = nn.Sequential

// NewSequential creates a new sequential model from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Block descriptors

// Activation selects the activation that follows a block.
type Activation = nn.Activation

// Activations available to blocks.
const (
	Identity = nn.Identity
	ActELU   = nn.ActELU
	ActAbs   = nn.ActAbs
)

// Block describes one layer of a model as data.
type Block = nn.Block

// Build interprets blocks into a Sequential model.
func Build(blocks []Block, backend *autodiff.Backend, src rand.Source) (*Sequential, error) {
	return nn.Build(blocks, backend, src)
}
