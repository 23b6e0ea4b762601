// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear
//   - Activations: ELU, Abs
//   - Loss functions: MSELoss
//   - Utilities: Sequential, Module interface, Parameter, Block descriptors
//   - Persistence: Save and Load of state dictionaries as NumPy archives
//
// # Basic Usage
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/ivimnet/ivimnet/autodiff"
//	    "github.com/ivimnet/ivimnet/nn"
//	)
//
//	func main() {
//	    backend := autodiff.New()
//	    src := rand.NewPCG(1, 2)
//
//	    // Build a small MLP
//	    model := nn.NewSequential(
//	        nn.NewLinear(8, 8, backend, src),
//	        nn.NewELU(1, backend),
//	        nn.NewLinear(8, 3, backend, src),
//	        nn.NewAbs(backend),
//	    )
//
//	    // Forward pass
//	    output := model.Forward(input)
//	}
//
// # Block descriptors
//
// Models can also be described as data and built by an interpreter:
//
//	model, err := nn.Build([]nn.Block{
//	    {In: 8, Out: 8, Activation: nn.ActELU},
//	    {In: 8, Out: 3, Activation: nn.ActAbs},
//	}, backend, src)
//
// # Loss Functions
//
// MSELoss: For regression tasks
//
//	criterion := nn.NewMSELoss(backend)
//	loss := criterion.Forward(predictions, targets)
//
// # Parameter Management
//
// Access model parameters for optimization:
//
//	params := model.Parameters()
//	for _, param := range params {
//	    fmt.Println(param.Name(), param.Value().Dims())
//	}
package nn
