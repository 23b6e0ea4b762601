package ops

import "gonum.org/v1/gonum/mat"

// MSEOp represents the mean squared error between predictions and targets:
//
//	loss = Σ (pred − target)² / N
//
// where N is the number of elements. The output is a 1×1 matrix.
//
// Backward pass:
//   - d(loss)/d(pred) = 2·(pred − target)/N
//   - d(loss)/d(target) = −2·(pred − target)/N
type MSEOp struct {
	inputs []*mat.Dense // [pred, target]
	output *mat.Dense   // [1, 1]
}

// NewMSEOp creates a new MSEOp.
func NewMSEOp(pred, target, output *mat.Dense) *MSEOp {
	return &MSEOp{
		inputs: []*mat.Dense{pred, target},
		output: output,
	}
}

// Backward computes gradients for predictions and targets.
func (op *MSEOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	pred, target := op.inputs[0], op.inputs[1]
	r, c := pred.Dims()
	scale := 2 * outputGrad.At(0, 0) / float64(r*c)

	gradPred := mat.NewDense(r, c, nil)
	gradPred.Sub(pred, target)
	gradPred.Scale(scale, gradPred)

	gradTarget := mat.NewDense(r, c, nil)
	gradTarget.Scale(-1, gradPred)

	return []*mat.Dense{gradPred, gradTarget}
}

// Inputs returns the input matrices [pred, target].
func (op *MSEOp) Inputs() []*mat.Dense {
	return op.inputs
}

// Output returns the 1×1 loss matrix.
func (op *MSEOp) Output() *mat.Dense {
	return op.output
}
