// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{
//	    LR: 0.001,
//	})
//
//	for _, batch := range batches {
//	    backend.Tape().Clear()
//	    backend.Tape().StartRecording()
//	    loss := lossFunc.Forward(model.Forward(batch), batch)
//	    grads := backend.Backward(loss)
//
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/ivimnet/ivimnet/internal/nn"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	//
	// Takes the gradient map returned by Backward, keyed by parameter matrix.
	Step(grads map[*mat.Dense]*mat.Dense)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Kind names an optimizer algorithm.
type Kind string

const (
	// KindAdam selects Adam.
	KindAdam Kind = "adam"
	// KindSGD selects SGD with optional momentum.
	KindSGD Kind = "sgd"
)

// New builds an optimizer of the given kind over params.
//
// Momentum is only used by SGD.
func New(kind Kind, params []*nn.Parameter, lr, momentum float64) (Optimizer, error) {
	switch kind {
	case KindAdam, "":
		return NewAdam(params, AdamConfig{LR: lr}), nil
	case KindSGD:
		return NewSGD(params, SGDConfig{LR: lr, Momentum: momentum}), nil
	default:
		return nil, errors.Errorf("unknown optimizer %q", kind)
	}
}

// getGradient safely retrieves gradient for a parameter.
//
// Returns nil if no gradient is found (parameter wasn't part of computation graph).
func getGradient(param *nn.Parameter, grads map[*mat.Dense]*mat.Dense) *mat.Dense {
	if param == nil {
		return nil
	}
	return grads[param.Value()]
}
