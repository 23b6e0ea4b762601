package ops

import "gonum.org/v1/gonum/mat"

// MatMulTransOp represents the affine kernel of a dense layer: output = x @ wᵀ.
//
// Shapes:
//   - x: [batch, in]
//   - w: [out, in]
//   - output: [batch, out]
//
// Backward pass:
//   - d(x@wᵀ)/dx = outputGrad @ w
//   - d(x@wᵀ)/dw = outputGradᵀ @ x
//
// Keeping w in [out, in] layout avoids materialising the transpose and lets
// the gradient land directly on the weight parameter.
type MatMulTransOp struct {
	inputs []*mat.Dense // [x, w]
	output *mat.Dense   // x @ wᵀ
}

// NewMatMulTransOp creates a new MatMulTransOp.
func NewMatMulTransOp(x, w, output *mat.Dense) *MatMulTransOp {
	return &MatMulTransOp{
		inputs: []*mat.Dense{x, w},
		output: output,
	}
}

// Backward computes input gradients for x @ wᵀ.
func (op *MatMulTransOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	x, w := op.inputs[0], op.inputs[1]

	// grad_x = outputGrad @ w: [batch, out] @ [out, in] = [batch, in]
	var gradX mat.Dense
	gradX.Mul(outputGrad, w)

	// grad_w = outputGradᵀ @ x: [out, batch] @ [batch, in] = [out, in]
	var gradW mat.Dense
	gradW.Mul(outputGrad.T(), x)

	return []*mat.Dense{&gradX, &gradW}
}

// Inputs returns the input matrices [x, w].
func (op *MatMulTransOp) Inputs() []*mat.Dense {
	return op.inputs
}

// Output returns the output matrix x @ wᵀ.
func (op *MatMulTransOp) Output() *mat.Dense {
	return op.output
}
