// Package autodiff implements reverse-mode automatic differentiation over
// gonum dense matrices.
//
// Backend computes the forward kernels of the estimator (affine maps, ELU,
// absolute value, mean squared error) and records each one on a GradientTape
// so that gradients can be propagated back to the parameters.
//
// Architecture:
//   - Backend: forward kernels plus recording
//   - GradientTape: records operations during the forward pass
//   - ops.Operation: each recorded op implements its own backward pass
//
// Usage:
//
//	backend := autodiff.New()
//	backend.Tape().StartRecording()
//
//	h := backend.AddRow(backend.MatMulTrans(x, w), bias)
//	loss := backend.MSE(h, target)
//
//	grads := backend.Backward(loss)
//	dw := grads[w]
package autodiff

import (
	"math"

	"github.com/ivimnet/ivimnet/internal/autodiff/ops"
	"github.com/ivimnet/ivimnet/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// Backend computes forward kernels and records them on a GradientTape.
//
// A Backend is not safe for concurrent use: each training cell owns one.
type Backend struct {
	tape     *GradientTape
	parallel parallel.Config
}

// New creates a Backend that splits large row-wise kernels across CPUs.
func New() *Backend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a Backend with an explicit parallel configuration.
func NewWithConfig(cfg parallel.Config) *Backend {
	return &Backend{
		tape:     NewGradientTape(),
		parallel: cfg,
	}
}

// Tape returns the gradient tape for manual control.
// Useful for:
//   - Starting/stopping recording
//   - Clearing tape between iterations
//   - Inspecting recorded operations
func (b *Backend) Tape() *GradientTape {
	return b.tape
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "Autodiff(gonum)"
}

// Record adds an externally constructed operation to the tape.
// Domain packages use it for kernels that live outside this package.
func (b *Backend) Record(op ops.Operation) {
	b.tape.Record(op)
}

// MatMulTrans computes x @ wᵀ for x [batch, in] and w [out, in].
func (b *Backend) MatMulTrans(x, w *mat.Dense) *mat.Dense {
	var result mat.Dense
	result.Mul(x, w.T())

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMatMulTransOp(x, w, &result))
	}
	return &result
}

// AddRow adds the [1, cols] row to every row of x.
func (b *Backend) AddRow(x, row *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	result := mat.NewDense(r, c, nil)
	bias := row.RawRowView(0)

	parallel.Rows(r, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst := result.RawRowView(i)
			for j, v := range x.RawRowView(i) {
				dst[j] = v + bias[j]
			}
		}
	}, b.parallel)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddRowOp(x, row, result))
	}
	return result
}

// ELU applies the exponential linear unit element-wise.
func (b *Backend) ELU(x *mat.Dense, alpha float64) *mat.Dense {
	r, c := x.Dims()
	result := mat.NewDense(r, c, nil)

	parallel.Rows(r, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst := result.RawRowView(i)
			for j, v := range x.RawRowView(i) {
				if v > 0 {
					dst[j] = v
				} else {
					dst[j] = alpha * math.Expm1(v)
				}
			}
		}
	}, b.parallel)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewELUOp(x, result, alpha))
	}
	return result
}

// Abs applies the absolute value element-wise.
func (b *Backend) Abs(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	result := mat.NewDense(r, c, nil)

	parallel.Rows(r, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst := result.RawRowView(i)
			for j, v := range x.RawRowView(i) {
				dst[j] = math.Abs(v)
			}
		}
	}, b.parallel)

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAbsOp(x, result))
	}
	return result
}

// MSE returns the mean squared error between pred and target as a 1×1 matrix.
//
// Panics if the shapes differ.
func (b *Backend) MSE(pred, target *mat.Dense) *mat.Dense {
	pr, pc := pred.Dims()
	tr, tc := target.Dims()
	if pr != tr || pc != tc {
		panic(mat.ErrShape)
	}

	loss := ops.SquaredError(pred, target) / float64(pr*pc)
	result := mat.NewDense(1, 1, []float64{loss})

	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMSEOp(pred, target, result))
	}
	return result
}
