// Package ivim implements the intravoxel incoherent motion model: a
// feed-forward estimator that maps a diffusion-weighted signal to the
// parameters (Dp, Dt, Fp), and the closed-form bi-exponential reconstructor
// that maps the parameters back to a signal.
//
// The signal at diffusion weighting b is
//
//	S(b) = Fp·exp(−b·Dp) + (1−Fp)·exp(−b·Dt)
//
// where Dp is the pseudo-diffusion (perfusion) coefficient, Dt the tissue
// diffusion coefficient and Fp the perfusion fraction. S(0) = 1 for every
// parameter triple, so measured signals are normalised by their b = 0 value.
package ivim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Column indices of the parameter matrix.
const (
	ColDp = iota
	ColDt
	ColFp

	// NumParams is the width of the parameter matrix.
	NumParams
)

// NonZero returns the b-values that carry diffusion weighting, in order.
func NonZero(bValues []float64) []float64 {
	out := make([]float64, 0, len(bValues))
	for _, b := range bValues {
		if b != 0 {
			out = append(out, b)
		}
	}
	return out
}

// Signal evaluates the bi-exponential model for a single parameter triple.
func Signal(dp, dt, fp, b float64) float64 {
	return fp*math.Exp(-b*dp) + (1-fp)*math.Exp(-b*dt)
}

// Canonical orders a parameter triple so that Dp ≥ Dt.
//
// The model is unchanged by swapping the two diffusion coefficients and
// replacing Fp with 1 − Fp, so an estimator may settle on either labelling.
func Canonical(dp, dt, fp float64) (float64, float64, float64) {
	if dp < dt {
		return dt, dp, 1 - fp
	}
	return dp, dt, fp
}

// Reconstruct maps an [n, 3] parameter matrix (columns Dp, Dt, Fp) to the
// [n, len(bValues)] signal matrix.
func Reconstruct(params *mat.Dense, bValues []float64) *mat.Dense {
	n, c := params.Dims()
	if c != NumParams {
		panic(fmt.Sprintf("ivim.Reconstruct: expected %d parameter columns, got %d", NumParams, c))
	}

	out := mat.NewDense(n, len(bValues), nil)
	for i := 0; i < n; i++ {
		p := params.RawRowView(i)
		dst := out.RawRowView(i)
		for j, b := range bValues {
			dst[j] = Signal(p[ColDp], p[ColDt], p[ColFp], b)
		}
	}
	return out
}

// SignalOp records Reconstruct on a gradient tape.
//
// Backward pass, per sample and b-value:
//   - dS/dDp = −b·Fp·exp(−b·Dp)
//   - dS/dDt = −b·(1−Fp)·exp(−b·Dt)
//   - dS/dFp = exp(−b·Dp) − exp(−b·Dt)
type SignalOp struct {
	params  *mat.Dense // [n, 3]
	output  *mat.Dense // [n, len(bValues)]
	bValues []float64
}

// NewSignalOp creates a new SignalOp.
func NewSignalOp(params, output *mat.Dense, bValues []float64) *SignalOp {
	return &SignalOp{
		params:  params,
		output:  output,
		bValues: bValues,
	}
}

// Backward computes the parameter gradient of the reconstructed signal.
func (op *SignalOp) Backward(outputGrad *mat.Dense) []*mat.Dense {
	n, _ := op.params.Dims()
	grad := mat.NewDense(n, NumParams, nil)

	for i := 0; i < n; i++ {
		p := op.params.RawRowView(i)
		g := outputGrad.RawRowView(i)
		dst := grad.RawRowView(i)
		dp, dt, fp := p[ColDp], p[ColDt], p[ColFp]

		for j, b := range op.bValues {
			ep := math.Exp(-b * dp)
			et := math.Exp(-b * dt)
			dst[ColDp] += g[j] * (-b * fp * ep)
			dst[ColDt] += g[j] * (-b * (1 - fp) * et)
			dst[ColFp] += g[j] * (ep - et)
		}
	}
	return []*mat.Dense{grad}
}

// Inputs returns the input matrices [params].
func (op *SignalOp) Inputs() []*mat.Dense {
	return []*mat.Dense{op.params}
}

// Output returns the reconstructed signal.
func (op *SignalOp) Output() *mat.Dense {
	return op.output
}
