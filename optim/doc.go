// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms for training neural networks.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface and New, which selects an optimizer by Kind
//
// # Basic Usage
//
//	import (
//	    "github.com/ivimnet/ivimnet/autodiff"
//	    "github.com/ivimnet/ivimnet/nn"
//	    "github.com/ivimnet/ivimnet/optim"
//	)
//
//	func main() {
//	    backend := autodiff.New()
//	    model := nn.NewLinear(8, 3, backend, src)
//	    criterion := nn.NewMSELoss(backend)
//
//	    optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	    backend.Tape().StartRecording()
//	    for epoch := range 10 {
//	        backend.Tape().Clear()
//
//	        // Forward pass
//	        loss := criterion.Forward(model.Forward(x), y)
//
//	        // Backward pass and update
//	        optimizer.Step(backend.Backward(loss))
//	        optimizer.ZeroGrad()
//	    }
//	}
//
// # Training Loop Pattern
//
//	for epoch := range numEpochs {
//	    for _, batch := range batches {
//	        // 1. Reset the tape
//	        backend.Tape().Clear()
//
//	        // 2. Forward pass
//	        loss := criterion.Forward(model.Forward(batch), batch)
//
//	        // 3. Backward pass
//	        grads := backend.Backward(loss)
//
//	        // 4. Update parameters
//	        optimizer.Step(grads)
//	        optimizer.ZeroGrad()
//	    }
//	}
package optim
