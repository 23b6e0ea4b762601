package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ivimnet/ivimnet/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	h := Default()
	require.NoError(t, h.Validate())
	assert.Equal(t, []float64{0, 10, 20, 50, 100, 200, 400, 800}, h.BValues)
	assert.Equal(t, 0.001, h.LearningRate)
	assert.Equal(t, optim.KindAdam, h.Optimizer)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, h.Depths())

	// The default list must not alias the package variable.
	h.BValues[1] = 99
	assert.Equal(t, 10.0, DefaultBValues[1])
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
b_values: [0, 50, 400]
batch_size: 16
epochs: 20
patience: 3
runs: 2
max_depth: 4
phantom:
  samples: 64
  noise: 0.02
`), 0o644))

	h, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 50, 400}, h.BValues)
	assert.Equal(t, 16, h.BatchSize)
	assert.Equal(t, 4, h.MaxDepth)
	assert.Equal(t, 64, h.Phantom.Samples)
	assert.Equal(t, 0.02, h.Phantom.Noise)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.001, h.LearningRate)
	assert.Equal(t, 0.01, h.Phantom.Dp.Min)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("num_blocks: 3\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "num_blocks")
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patience: 0\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "patience must be positive")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hp.yaml")
	h := Default()
	h.Runs = 3
	h.Optimizer = optim.KindSGD
	h.Momentum = 0.9
	require.NoError(t, h.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Hyperparameters)
		want   string
	}{
		{"only b0", func(h *Hyperparameters) { h.BValues = []float64{0} }, "non-zero"},
		{"negative b", func(h *Hyperparameters) { h.BValues = []float64{0, -10} }, "non-negative"},
		{"batch", func(h *Hyperparameters) { h.BatchSize = 0 }, "batch_size"},
		{"lr", func(h *Hyperparameters) { h.LearningRate = 0 }, "learning_rate"},
		{"momentum", func(h *Hyperparameters) { h.Momentum = 1 }, "momentum"},
		{"epochs", func(h *Hyperparameters) { h.Epochs = 0 }, "epochs"},
		{"runs", func(h *Hyperparameters) { h.Runs = 0 }, "runs"},
		{"depth", func(h *Hyperparameters) { h.MaxDepth = 0 }, "max_depth"},
		{"output", func(h *Hyperparameters) { h.Output = "" }, "output"},
		{"optimizer", func(h *Hyperparameters) { h.Optimizer = "rmsprop" }, "unknown optimizer"},
		{"phantom", func(h *Hyperparameters) { h.Phantom.Samples = 0 }, "phantom samples"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Default()
			tt.mutate(&h)
			assert.ErrorContains(t, h.Validate(), tt.want)
		})
	}

	// A data file makes the phantom settings irrelevant.
	h := Default()
	h.Phantom.Samples = 0
	h.DataFile = "phantom.npz"
	assert.NoError(t, h.Validate())
}

func TestCell(t *testing.T) {
	h := Default()
	cell := h.Cell(3, 5)

	assert.Equal(t, 3, cell.Run())
	assert.Equal(t, 5, cell.Depth())
	assert.Equal(t, h.Epochs, cell.Epochs())
	assert.Equal(t, h.Patience, cell.Patience())
	assert.Equal(t, h.LearningRate, cell.LearningRate())

	// Later changes to the hyperparameters do not leak into the cell.
	h.BValues[1] = 1234
	h.Epochs = 1
	assert.Equal(t, 10.0, cell.BValues()[1])
	assert.Equal(t, Default().Epochs, cell.Epochs())

	// Nor do changes to a returned slice.
	cell.BValues()[1] = 4321
	assert.Equal(t, 10.0, cell.BValues()[1])
}

func TestCell_SourceIsPerCell(t *testing.T) {
	h := Default()
	a := h.Cell(0, 1).Source().Uint64()
	b := h.Cell(0, 1).Source().Uint64()
	c := h.Cell(1, 0).Source().Uint64()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
