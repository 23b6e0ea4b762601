package ops

import "gonum.org/v1/gonum/mat"

// AbsOp represents the element-wise absolute value: y = |x|.
//
// Backward pass:
//   - d|x|/dx = sign(x), with sign(0) = 0
type AbsOp struct {
	input  *mat.Dense
	output *mat.Dense
}

// NewAbsOp creates a new AbsOp.
func NewAbsOp(input, output *mat.Dense) *AbsOp {
	return &AbsOp{
		input:  input,
		output: output,
	}
}

// Backward computes the input gradient for |x|.
func (op *AbsOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	r, c := outputGrad.Dims()
	gradInput := mat.NewDense(r, c, nil)
	gradInput.Apply(func(i, j int, g float64) float64 {
		return g * Sign(op.input.At(i, j))
	}, outputGrad)
	return []*mat.Dense{gradInput}
}

// Inputs returns the input matrix [x].
func (op *AbsOp) Inputs() []*mat.Dense {
	return []*mat.Dense{op.input}
}

// Output returns the output matrix |x|.
func (op *AbsOp) Output() *mat.Dense {
	return op.output
}
