package nn

import (
	"github.com/ivimnet/ivimnet/internal/autodiff"
	"gonum.org/v1/gonum/mat"
)

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Example:
//
//	mse := nn.NewMSELoss(backend)
//	loss := mse.Forward(reconstructed, observed)
//	grads := backend.Backward(loss)
type MSELoss struct {
	backend *autodiff.Backend
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss(backend *autodiff.Backend) *MSELoss {
	return &MSELoss{
		backend: backend,
	}
}

// Forward computes the MSE loss as a 1×1 matrix.
//
// Panics if predictions and targets have different shapes.
func (m *MSELoss) Forward(predictions, targets *mat.Dense) *mat.Dense {
	pr, pc := predictions.Dims()
	tr, tc := targets.Dims()
	if pr != tr || pc != tc {
		panic("MSELoss: predictions and targets must have the same shape")
	}
	return m.backend.MSE(predictions, targets)
}
