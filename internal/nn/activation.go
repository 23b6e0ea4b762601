package nn

import (
	"github.com/ivimnet/ivimnet/internal/autodiff"
	"gonum.org/v1/gonum/mat"
)

// ELU is an exponential linear unit activation module.
//
// Applies the element-wise function:
//
//	f(x) = x               if x > 0
//	f(x) = α·(exp(x) − 1)  otherwise
//
// Example:
//
//	elu := nn.NewELU(1.0, backend)
//	output := elu.Forward(input)
type ELU struct {
	alpha   float64
	backend *autodiff.Backend
}

// NewELU creates a new ELU activation module.
func NewELU(alpha float64, backend *autodiff.Backend) *ELU {
	return &ELU{alpha: alpha, backend: backend}
}

// Forward applies ELU activation.
func (e *ELU) Forward(input *mat.Dense) *mat.Dense {
	return e.backend.ELU(input, e.alpha)
}

// Alpha returns the saturation value for negative inputs.
func (e *ELU) Alpha() float64 {
	return e.alpha
}

// Parameters returns an empty slice (ELU has no trainable parameters).
func (e *ELU) Parameters() []*Parameter {
	return nil
}

// StateDict returns an empty map.
func (e *ELU) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{}
}

// LoadStateDict is a no-op.
func (e *ELU) LoadStateDict(map[string]*mat.Dense) error {
	return nil
}

// Abs is an absolute value module.
//
// Applies f(x) = |x| element-wise. Placed after the last layer it makes
// every output non-negative.
type Abs struct {
	backend *autodiff.Backend
}

// NewAbs creates a new Abs module.
func NewAbs(backend *autodiff.Backend) *Abs {
	return &Abs{backend: backend}
}

// Forward applies |x|.
func (a *Abs) Forward(input *mat.Dense) *mat.Dense {
	return a.backend.Abs(input)
}

// Parameters returns an empty slice (Abs has no trainable parameters).
func (a *Abs) Parameters() []*Parameter {
	return nil
}

// StateDict returns an empty map.
func (a *Abs) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{}
}

// LoadStateDict is a no-op.
func (a *Abs) LoadStateDict(map[string]*mat.Dense) error {
	return nil
}
