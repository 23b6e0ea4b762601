package nn

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform returns a rows×cols matrix with entries drawn from U(-bound, bound).
func Uniform(rows, cols int, bound float64, src rand.Source) *mat.Dense {
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: src}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(rows, cols, data)
}

// FanInBound returns 1/√fanIn, the bound of the default dense layer initializer.
//
// Both weights and biases of a layer with fanIn inputs are drawn from
// U(-1/√fanIn, 1/√fanIn).
func FanInBound(fanIn int) float64 {
	return 1 / math.Sqrt(float64(fanIn))
}
