// Package config holds the hyperparameters of a depth grid search and the
// immutable per-cell configuration derived from them.
package config

import (
	"bytes"
	"math/rand/v2"
	"os"
	"slices"

	"github.com/ivimnet/ivimnet/internal/data"
	"github.com/ivimnet/ivimnet/internal/ivim"
	"github.com/ivimnet/ivimnet/internal/optim"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultBValues are the diffusion weightings of the phantom acquisition, in s/mm².
var DefaultBValues = []float64{0, 10, 20, 50, 100, 200, 400, 800}

// Hyperparameters configures a grid search.
type Hyperparameters struct {
	// BValues lists the acquired diffusion weightings. Zero entries mark the
	// reference signal used for normalisation.
	BValues []float64 `yaml:"b_values"`

	BatchSize    int        `yaml:"batch_size"`
	DropLast     bool       `yaml:"drop_last"`
	Shuffle      bool       `yaml:"shuffle"`
	LearningRate float64    `yaml:"learning_rate"`
	Optimizer    optim.Kind `yaml:"optimizer"`
	Momentum     float64    `yaml:"momentum"`

	// Epochs bounds every cell; Patience is the number of consecutive epochs
	// without a strictly smaller loss after which a cell stops early.
	Epochs   int `yaml:"epochs"`
	Patience int `yaml:"patience"`

	// Runs repeats the search; depths range over 0 … MaxDepth−1.
	Runs     int `yaml:"runs"`
	MaxDepth int `yaml:"max_depth"`

	// DataFile is a .csv or .npz phantom. When empty, Phantom is synthesised.
	DataFile string             `yaml:"data_file"`
	Phantom  data.PhantomConfig `yaml:"phantom"`

	// Output is the NPZ results file, rewritten after every cell.
	Output string `yaml:"output"`
	Seed   uint64 `yaml:"seed"`
}

// Default returns the hyperparameters of the reference experiment.
func Default() Hyperparameters {
	return Hyperparameters{
		BValues:      slices.Clone(DefaultBValues),
		BatchSize:    128,
		Shuffle:      true,
		LearningRate: 0.001,
		Optimizer:    optim.KindAdam,
		Epochs:       1000,
		Patience:     10,
		Runs:         10,
		MaxDepth:     10,
		Phantom:      data.DefaultPhantom(),
		Output:       "gridsearch_layers.npz",
		Seed:         42,
	}
}

// Load reads YAML hyperparameters from path on top of Default.
//
// Unknown keys are rejected. The result is validated.
func Load(path string) (Hyperparameters, error) {
	h := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		return h, errors.Wrapf(err, "reading config %q", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&h); err != nil {
		return h, errors.Wrapf(err, "parsing config %q", path)
	}
	if err := h.Validate(); err != nil {
		return h, errors.Wrapf(err, "invalid config %q", path)
	}
	return h, nil
}

// Save writes h as YAML to path.
func (h Hyperparameters) Save(path string) error {
	content, err := yaml.Marshal(h)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	return errors.Wrapf(os.WriteFile(path, content, 0o644), "writing config %q", path)
}

// Validate checks that the hyperparameters describe a runnable search.
func (h Hyperparameters) Validate() error {
	switch {
	case len(ivim.NonZero(h.BValues)) == 0:
		return errors.New("b_values must contain at least one non-zero value")
	case h.BatchSize <= 0:
		return errors.Errorf("batch_size must be positive, got %d", h.BatchSize)
	case h.LearningRate <= 0:
		return errors.Errorf("learning_rate must be positive, got %g", h.LearningRate)
	case h.Momentum < 0 || h.Momentum >= 1:
		return errors.Errorf("momentum must be in [0, 1), got %g", h.Momentum)
	case h.Epochs <= 0:
		return errors.Errorf("epochs must be positive, got %d", h.Epochs)
	case h.Patience <= 0:
		return errors.Errorf("patience must be positive, got %d", h.Patience)
	case h.Runs <= 0:
		return errors.Errorf("runs must be positive, got %d", h.Runs)
	case h.MaxDepth <= 0:
		return errors.Errorf("max_depth must be positive, got %d", h.MaxDepth)
	case h.Output == "":
		return errors.New("output must be set")
	}
	for _, b := range h.BValues {
		if b < 0 {
			return errors.Errorf("b_values must be non-negative, got %g", b)
		}
	}
	switch h.Optimizer {
	case optim.KindAdam, optim.KindSGD:
	default:
		return errors.Errorf("unknown optimizer %q", h.Optimizer)
	}
	if h.DataFile == "" {
		if err := h.Phantom.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Depths returns the searched depths 0 … MaxDepth−1.
func (h Hyperparameters) Depths() []int {
	depths := make([]int, h.MaxDepth)
	for i := range depths {
		depths[i] = i
	}
	return depths
}

// Cell returns the configuration of one (run, depth) cell.
func (h Hyperparameters) Cell(run, depth int) Cell {
	return Cell{
		run:          run,
		depth:        depth,
		bValues:      slices.Clone(h.BValues),
		batchSize:    h.BatchSize,
		dropLast:     h.DropLast,
		shuffle:      h.Shuffle,
		learningRate: h.LearningRate,
		optimizer:    h.Optimizer,
		momentum:     h.Momentum,
		epochs:       h.Epochs,
		patience:     h.Patience,
		seed:         h.Seed,
	}
}

// Cell is the immutable configuration of a single training run at one depth.
type Cell struct {
	run, depth   int
	bValues      []float64
	batchSize    int
	dropLast     bool
	shuffle      bool
	learningRate float64
	optimizer    optim.Kind
	momentum     float64
	epochs       int
	patience     int
	seed         uint64
}

// Run returns the repetition index.
func (c Cell) Run() int { return c.run }

// Depth returns the number of hidden blocks.
func (c Cell) Depth() int { return c.depth }

// BValues returns a copy of the configured b-values.
func (c Cell) BValues() []float64 { return slices.Clone(c.bValues) }

// BatchSize returns the mini-batch size.
func (c Cell) BatchSize() int { return c.batchSize }

// DropLast reports whether a trailing partial batch is skipped.
func (c Cell) DropLast() bool { return c.dropLast }

// Shuffle reports whether batches are reshuffled every epoch.
func (c Cell) Shuffle() bool { return c.shuffle }

// LearningRate returns the optimizer step size.
func (c Cell) LearningRate() float64 { return c.learningRate }

// Optimizer returns the optimizer kind.
func (c Cell) Optimizer() optim.Kind { return c.optimizer }

// Momentum returns the SGD momentum.
func (c Cell) Momentum() float64 { return c.momentum }

// Epochs returns the epoch budget.
func (c Cell) Epochs() int { return c.epochs }

// Patience returns the early-stopping patience.
func (c Cell) Patience() int { return c.patience }

// Source returns the random source of this cell.
//
// Each (run, depth) pair gets its own PCG stream of the base seed, so cells
// are reproducible independently of the order they run in.
func (c Cell) Source() rand.Source {
	return rand.NewPCG(c.seed, uint64(c.run)<<32|uint64(c.depth))
}
