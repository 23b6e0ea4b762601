package data

import (
	"math/rand/v2"

	"github.com/ivimnet/ivimnet/internal/ivim"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// Range is a closed interval of parameter values.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// PhantomConfig describes a synthetic phantom.
//
// Parameters are drawn uniformly from their ranges and the noise-free
// signals are computed with the bi-exponential model. When Noise > 0,
// Gaussian noise with that standard deviation is added to every signal
// sample at a non-zero b-value.
type PhantomConfig struct {
	Samples int     `yaml:"samples"`
	Dp      Range   `yaml:"dp"`
	Dt      Range   `yaml:"dt"`
	Fp      Range   `yaml:"fp"`
	Noise   float64 `yaml:"noise"`
}

// DefaultPhantom returns ranges typical of abdominal IVIM imaging in mm²/s.
func DefaultPhantom() PhantomConfig {
	return PhantomConfig{
		Samples: 1000,
		Dp:      Range{Min: 0.01, Max: 0.1},
		Dt:      Range{Min: 0.0005, Max: 0.002},
		Fp:      Range{Min: 0.1, Max: 0.4},
	}
}

// Validate checks the phantom settings.
func (c PhantomConfig) Validate() error {
	if c.Samples <= 0 {
		return errors.Errorf("phantom samples must be positive, got %d", c.Samples)
	}
	for _, r := range []struct {
		name string
		Range
	}{{"dp", c.Dp}, {"dt", c.Dt}, {"fp", c.Fp}} {
		if r.Min < 0 || r.Max < r.Min {
			return errors.Errorf("invalid phantom %s range [%g, %g]", r.name, r.Min, r.Max)
		}
	}
	if c.Noise < 0 {
		return errors.Errorf("phantom noise must be non-negative, got %g", c.Noise)
	}
	return nil
}

// Synthesize generates a phantom over the non-zero b-values from src.
//
// The returned Dataset carries the generating parameters as reference.
func Synthesize(cfg PhantomConfig, bValues []float64, src rand.Source) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nonZero := ivim.NonZero(bValues)
	if len(nonZero) == 0 {
		return nil, errors.New("no non-zero b-values")
	}

	draw := func(r Range) []float64 {
		out := make([]float64, cfg.Samples)
		if r.Max == r.Min {
			for i := range out {
				out[i] = r.Min
			}
			return out
		}
		dist := distuv.Uniform{Min: r.Min, Max: r.Max, Src: src}
		for i := range out {
			out[i] = dist.Rand()
		}
		return out
	}

	ds := &Dataset{
		BValues: nonZero,
		Dp:      draw(cfg.Dp),
		Dt:      draw(cfg.Dt),
		Fp:      draw(cfg.Fp),
	}
	ds.X = ivim.Reconstruct(paramMatrix(ds.Dp, ds.Dt, ds.Fp), nonZero)

	if cfg.Noise > 0 {
		noise := distuv.Normal{Mu: 0, Sigma: cfg.Noise, Src: src}
		ds.X.Apply(func(_, _ int, v float64) float64 {
			return v + noise.Rand()
		}, ds.X)
	}
	return ds, nil
}

// FromParams builds a noise-free Dataset from explicit parameter triples.
func FromParams(dp, dt, fp []float64, bValues []float64) (*Dataset, error) {
	if len(dp) != len(dt) || len(dp) != len(fp) || len(dp) == 0 {
		return nil, errors.Errorf("parameter lengths differ or are empty: %d, %d, %d", len(dp), len(dt), len(fp))
	}
	nonZero := ivim.NonZero(bValues)
	ds := &Dataset{
		BValues: nonZero,
		Dp:      append([]float64(nil), dp...),
		Dt:      append([]float64(nil), dt...),
		Fp:      append([]float64(nil), fp...),
	}
	ds.X = ivim.Reconstruct(paramMatrix(ds.Dp, ds.Dt, ds.Fp), nonZero)
	return ds, nil
}
