// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides automatic differentiation over gonum matrices.
//
// This package implements reverse-mode automatic differentiation (backpropagation)
// using a gradient tape. Operations issued through a Backend while its tape is
// recording can be differentiated with Backend.Backward.
//
// Example:
//
//	import (
//	    "github.com/ivimnet/ivimnet/autodiff"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    backend := autodiff.New()
//	    backend.Tape().StartRecording()
//
//	    x := mat.NewDense(2, 3, nil)
//	    w := mat.NewDense(4, 3, nil)
//	    y := backend.MatMulTrans(x, w) // recorded on tape
//
//	    // Compute gradients
//	    grads := backend.Backward(y)
//	}
package autodiff

import (
	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/ivimnet/ivimnet/internal/parallel"
)

// Backend is the autodiff-enabled backend.
type Backend = autodiff.Backend

// New creates a new autodiff backend with the default parallel configuration.
func New() *Backend {
	return autodiff.New()
}

// ParallelConfig controls how row kernels are split across goroutines.
type ParallelConfig = parallel.Config

// NewWithConfig creates an autodiff backend with an explicit parallel configuration.
//
// Example:
//
//	backend := autodiff.NewWithConfig(autodiff.Sequential())
func NewWithConfig(cfg ParallelConfig) *Backend {
	return autodiff.NewWithConfig(cfg)
}

// Sequential returns a configuration that never spawns goroutines.
func Sequential() ParallelConfig {
	return parallel.Sequential()
}

// GradientTape records operations for automatic differentiation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}
