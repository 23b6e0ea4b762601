package ops

import "gonum.org/v1/gonum/mat"

// Sign returns −1, 0 or 1 according to the sign of v.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ColumnSums reduces m over its rows and returns a [1, cols] matrix.
func ColumnSums(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	sums := mat.NewDense(1, c, nil)
	dst := sums.RawRowView(0)
	for i := 0; i < r; i++ {
		for j, v := range m.RawRowView(i) {
			dst[j] += v
		}
	}
	return sums
}

// SquaredError returns Σ (a − b)² over all elements.
func SquaredError(a, b *mat.Dense) float64 {
	r, _ := a.Dims()
	var sum float64
	for i := 0; i < r; i++ {
		rowB := b.RawRowView(i)
		for j, v := range a.RawRowView(i) {
			d := v - rowB[j]
			sum += d * d
		}
	}
	return sum
}
