// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ivim_test

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/ivimnet/ivimnet/autodiff"
	"github.com/ivimnet/ivimnet/ivim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSignal(t *testing.T) {
	assert.InDelta(t, 1.0, ivim.Signal(0.05, 0.001, 0.3, 0), 1e-15)
	want := 0.3*math.Exp(-100*0.05) + 0.7*math.Exp(-100*0.001)
	assert.InDelta(t, want, ivim.Signal(0.05, 0.001, 0.3, 100), 1e-15)

	s := ivim.Reconstruct(mat.NewDense(1, 3, []float64{0.05, 0.001, 0.3}), []float64{100})
	r, c := s.Dims()
	assert.Equal(t, 1, r)
	assert.Equal(t, 1, c)
	assert.InDelta(t, want, s.At(0, 0), 1e-15)
}

func TestSynthesize_Reproducible(t *testing.T) {
	hp := ivim.DefaultConfig()
	hp.Phantom.Samples = 16

	a, err := ivim.Synthesize(hp.Phantom, hp.BValues, 3)
	require.NoError(t, err)
	b, err := ivim.Synthesize(hp.Phantom, hp.BValues, 3)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a.X, b.X))
	assert.Equal(t, 16, a.Len())
}

func TestGridSearch(t *testing.T) {
	hp := ivim.DefaultConfig()
	hp.Phantom.Samples = 32
	hp.Runs = 1
	hp.MaxDepth = 2
	hp.Epochs = 2
	hp.BatchSize = 16
	hp.Output = filepath.Join(t.TempDir(), "grid.npz")

	ds, err := ivim.Synthesize(hp.Phantom, hp.BValues, hp.Seed)
	require.NoError(t, err)

	runner, err := ivim.NewRunner(hp, ds)
	require.NoError(t, err)
	results, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, results.Completed())

	saved, err := ivim.LoadResults(hp.Output)
	require.NoError(t, err)
	assert.True(t, mat.Equal(results.BestLoss(), saved.BestLoss()))

	res, err := ivim.Fit(context.Background(), hp.Cell(0, 1), ds)
	require.NoError(t, err)
	pred := res.Net.Forward(ds.X)
	assert.Len(t, pred.Fp(), ds.Len())
}

func TestFit_Options(t *testing.T) {
	hp := ivim.DefaultConfig()
	hp.Phantom.Samples = 8
	hp.Epochs = 4
	hp.Patience = 4
	hp.BatchSize = 4

	ds, err := ivim.Synthesize(hp.Phantom, hp.BValues, 5)
	require.NoError(t, err)

	var (
		progress bytes.Buffer
		seen     []ivim.EpochStats
	)
	res, err := ivim.Fit(context.Background(), hp.Cell(0, 1), ds,
		ivim.WithParallel(autodiff.Sequential()),
		ivim.WithProgress(&progress),
		ivim.WithEpochHook(func(s ivim.EpochStats) { seen = append(seen, s) }),
	)
	require.NoError(t, err)

	require.Len(t, seen, res.Epochs)
	for i, s := range seen {
		assert.Equal(t, i+1, s.Epoch)
		assert.Equal(t, 1, s.Depth)
		assert.Equal(t, res.Losses[i], s.Loss)
	}
	assert.NotZero(t, progress.Len())
}
