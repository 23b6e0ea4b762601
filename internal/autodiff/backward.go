package autodiff

import (
	"gonum.org/v1/gonum/mat"
)

// Backward computes gradients of a scalar output using the Backend's tape.
//
// The output must be the result of the last recorded operation, normally the
// 1×1 loss returned by MSE. It is seeded with ones.
//
// Returns a map from each recorded matrix to its gradient.
//
// Example:
//
//	backend := autodiff.New()
//	backend.Tape().StartRecording()
//	loss := backend.MSE(pred, target)
//	gradients := backend.Backward(loss)
//	grad := gradients[w] // Get gradient for w
func (b *Backend) Backward(output *mat.Dense) map[*mat.Dense]*mat.Dense {
	if b.tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	r, c := output.Dims()
	outputGrad := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := outputGrad.RawRowView(i)
		for j := range row {
			row[j] = 1
		}
	}

	return b.tape.Backward(outputGrad)
}
