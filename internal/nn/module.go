// Package nn implements the neural network modules used by the IVIM estimator.
//
// This package provides building blocks for constructing small regressors:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable matrices with gradient storage
//   - Linear: Fully connected layer
//   - Activations: ELU, Abs
//   - Loss functions: MSE
//   - Sequential: Container for stacking layers
//   - Block: Typed layer descriptors and the Build interpreter
//
// Every module computes through an autodiff.Backend, so forward passes made
// while the backend's tape is recording can be differentiated.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(8, 8, backend, src),
//	    nn.NewELU(1, backend),
//	    nn.NewLinear(8, 3, backend, src),
//	)
type Module interface {
	// Forward computes the output of the module given an input batch.
	//
	// The input has shape [batch_size, features]. Linear expects
	// features == in_features.
	Forward(input *mat.Dense) *mat.Dense

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter

	// StateDict returns copies of the module's parameters keyed by name.
	StateDict() map[string]*mat.Dense

	// LoadStateDict copies parameters from a state dictionary into the module.
	LoadStateDict(stateDict map[string]*mat.Dense) error
}
