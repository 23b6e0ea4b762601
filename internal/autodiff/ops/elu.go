package ops

import "gonum.org/v1/gonum/mat"

// ELUOp represents the exponential linear unit:
//
//	elu(x) = x                 if x > 0
//	elu(x) = α·(exp(x) − 1)    otherwise
//
// Backward pass:
//   - d(elu(x))/dx = 1 if x > 0
//   - d(elu(x))/dx = α·exp(x) = elu(x) + α otherwise
//
// The negative branch derivative is recovered from the stored output, so
// the forward exponentials are not recomputed.
type ELUOp struct {
	input  *mat.Dense
	output *mat.Dense
	alpha  float64
}

// NewELUOp creates a new ELUOp.
func NewELUOp(input, output *mat.Dense, alpha float64) *ELUOp {
	return &ELUOp{
		input:  input,
		output: output,
		alpha:  alpha,
	}
}

// Backward computes the input gradient for ELU.
func (op *ELUOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	r, c := outputGrad.Dims()
	gradInput := mat.NewDense(r, c, nil)
	gradInput.Apply(func(i, j int, g float64) float64 {
		if op.input.At(i, j) > 0 {
			return g
		}
		return g * (op.output.At(i, j) + op.alpha)
	}, outputGrad)
	return []*mat.Dense{gradInput}
}

// Inputs returns the input matrix [x].
func (op *ELUOp) Inputs() []*mat.Dense {
	return []*mat.Dense{op.input}
}

// Output returns the output matrix elu(x).
func (op *ELUOp) Output() *mat.Dense {
	return op.output
}
