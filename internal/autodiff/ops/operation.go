// Package ops defines the differentiable operations recorded on a gradient tape.
//
// Each operation keeps references to its inputs and its output from the
// forward pass and computes the gradients of its inputs during the backward
// pass.
//
// Supported operations:
//   - MatMulTransOp: x @ wᵀ (d/dx = grad @ w, d/dw = gradᵀ @ x)
//   - AddRowOp: x + row broadcast over rows (d/drow = column sums of grad)
//   - ELUOp: exponential linear unit (d/dx = 1 if x > 0, else elu(x) + α)
//   - AbsOp: absolute value (d/dx = sign(x))
//   - MSEOp: mean squared error between two matrices
//
// Values are gonum dense matrices; the tape identifies them by pointer.
package ops

import "gonum.org/v1/gonum/mat"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input matrix.
	// A nil entry means no gradient flows to that input.
	//
	// Example for AddRowOp:
	//   inputs: [x, row]
	//   outputGrad: dL/d(x+row)
	//   returns: [dL/d(x+row), column sums of dL/d(x+row)]
	Backward(outputGrad *mat.Dense) []*mat.Dense

	// Inputs returns the input matrices for this operation.
	Inputs() []*mat.Dense

	// Output returns the output matrix produced by this operation.
	Output() *mat.Dense
}
