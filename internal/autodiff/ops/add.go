package ops

import "gonum.org/v1/gonum/mat"

// AddRowOp represents a bias addition: output[i, j] = x[i, j] + row[0, j].
//
// Backward pass:
//   - d(x+row)/dx = 1, so grad_x = outputGrad
//   - the row is broadcast over the batch, so grad_row sums outputGrad over rows
type AddRowOp struct {
	inputs []*mat.Dense // [x, row]
	output *mat.Dense
}

// NewAddRowOp creates a new AddRowOp.
func NewAddRowOp(x, row, output *mat.Dense) *AddRowOp {
	return &AddRowOp{
		inputs: []*mat.Dense{x, row},
		output: output,
	}
}

// Backward computes input gradients for the broadcast addition.
func (op *AddRowOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	gradX := mat.DenseCopyOf(outputGrad)
	gradRow := ColumnSums(outputGrad)
	return []*mat.Dense{gradX, gradRow}
}

// Inputs returns the input matrices [x, row].
func (op *AddRowOp) Inputs() []*mat.Dense {
	return op.inputs
}

// Output returns the output matrix x + row.
func (op *AddRowOp) Output() *mat.Dense {
	return op.output
}
