// Package data loads diffusion-weighted phantom measurements and splits them
// into training batches.
//
// Measurements are stored row-wise: one sample per row, one column per
// b-value. Signals are normalised by their b = 0 value, after which the
// b = 0 column is dropped, so a Dataset always holds signals at the non-zero
// b-values only.
package data

import (
	"github.com/ivimnet/ivimnet/internal/ivim"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset is a set of normalised signals with optional reference parameters.
type Dataset struct {
	// X holds the signals, [n, L].
	X *mat.Dense
	// BValues are the non-zero b-values matching the columns of X.
	BValues []float64

	// Reference parameters, nil when the source has none.
	Dp, Dt, Fp []float64
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	if d.X == nil {
		return 0
	}
	r, _ := d.X.Dims()
	return r
}

// HasReference reports whether every sample carries reference parameters.
func (d *Dataset) HasReference() bool {
	n := d.Len()
	return len(d.Dp) == n && len(d.Dt) == n && len(d.Fp) == n && n > 0
}

// Reference returns the reference parameters as an [n, 3] matrix with
// columns Dp, Dt, Fp, or nil when there are none.
func (d *Dataset) Reference() *mat.Dense {
	if !d.HasReference() {
		return nil
	}
	return paramMatrix(d.Dp, d.Dt, d.Fp)
}

// paramMatrix stacks equally long Dp, Dt and Fp slices into an [n, 3] matrix.
func paramMatrix(dp, dt, fp []float64) *mat.Dense {
	m := mat.NewDense(len(dp), ivim.NumParams, nil)
	m.SetCol(ivim.ColDp, dp)
	m.SetCol(ivim.ColDt, dt)
	m.SetCol(ivim.ColFp, fp)
	return m
}

// normalize turns raw measurements into a Dataset over the non-zero b-values.
//
// raw must have one column per configured b-value or one column per non-zero
// b-value. In the first case every row is divided by its b = 0 signal and the
// b = 0 columns are dropped.
func normalize(raw *mat.Dense, bValues []float64) (*Dataset, error) {
	nonZero := ivim.NonZero(bValues)
	n, c := raw.Dims()

	switch c {
	case len(nonZero):
		return &Dataset{X: raw, BValues: nonZero}, nil
	case len(bValues):
	default:
		return nil, errors.Errorf("expected %d or %d signal columns, got %d", len(bValues), len(nonZero), c)
	}

	b0 := -1
	for j, b := range bValues {
		if b == 0 {
			b0 = j
			break
		}
	}

	x := mat.NewDense(n, len(nonZero), nil)
	for i := 0; i < n; i++ {
		row := raw.RawRowView(i)
		scale := 1.0
		if b0 >= 0 {
			scale = row[b0]
			if scale == 0 {
				return nil, errors.Errorf("sample %d has a zero b=0 signal", i)
			}
		}

		dst := x.RawRowView(i)
		k := 0
		for j, b := range bValues {
			if b == 0 {
				continue
			}
			dst[k] = row[j] / scale
			k++
		}
	}
	return &Dataset{X: x, BValues: nonZero}, nil
}
