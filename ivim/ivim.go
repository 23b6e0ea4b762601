// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package ivim

import (
	"context"
	"io"
	"math/rand/v2"

	"github.com/ivimnet/ivimnet/autodiff"
	"github.com/ivimnet/ivimnet/internal/config"
	"github.com/ivimnet/ivimnet/internal/data"
	"github.com/ivimnet/ivimnet/internal/gridsearch"
	"github.com/ivimnet/ivimnet/internal/ivim"
	"github.com/ivimnet/ivimnet/internal/train"
	"gonum.org/v1/gonum/mat"
)

// Model

// Net is the parameter estimator followed by the signal reconstructor.
type Net = ivim.Net

// Prediction holds the estimated parameters and the reconstructed signals.
type Prediction = ivim.Prediction

// NewNet creates an estimator with depth hidden blocks for the given
// acquisition. Only the non-zero b-values become network inputs.
func NewNet(bValues []float64, depth int, backend *autodiff.Backend, src rand.Source) (*Net, error) {
	return ivim.NewNet(bValues, depth, backend, src)
}

// Reconstruct evaluates the bi-exponential model for every row of params
// (columns Dp, Dt, Fp) at every b-value.
func Reconstruct(params *mat.Dense, bValues []float64) *mat.Dense {
	return ivim.Reconstruct(params, bValues)
}

// Signal evaluates the bi-exponential model for a single voxel and b-value.
func Signal(dp, dt, fp, b float64) float64 {
	return ivim.Signal(dp, dt, fp, b)
}

// Configuration

// Hyperparameters configures a grid search.
type Hyperparameters = config.Hyperparameters

// Cell is the immutable configuration of one (run, depth) cell.
type Cell = config.Cell

// DefaultConfig returns the hyperparameters of the reference experiment.
func DefaultConfig() Hyperparameters {
	return config.Default()
}

// LoadConfig reads YAML hyperparameters on top of DefaultConfig.
func LoadConfig(path string) (Hyperparameters, error) {
	return config.Load(path)
}

// Data

// Dataset holds normalised signals and optional reference parameters.
type Dataset = data.Dataset

// PhantomConfig describes a synthetic phantom.
type PhantomConfig = data.PhantomConfig

// LoadData reads a .csv or .npz phantom and normalises it by its b = 0 signal.
func LoadData(path string, bValues []float64) (*Dataset, error) {
	return data.Load(path, bValues)
}

// Synthesize draws a phantom from cfg, reproducibly for a given seed.
func Synthesize(cfg PhantomConfig, bValues []float64, seed uint64) (*Dataset, error) {
	return data.Synthesize(cfg, bValues, rand.NewPCG(seed, seed))
}

// Training

// FitResult is the outcome of training one cell.
type FitResult = train.Result

// FitOption configures Fit.
type FitOption = train.Option

// EpochStats is reported to an epoch hook after every epoch.
type EpochStats = train.EpochStats

// WithProgress draws a progress bar over the epoch budget to w.
func WithProgress(w io.Writer) FitOption {
	return train.WithProgress(w)
}

// WithParallel sets how kernels split large batches across goroutines.
func WithParallel(cfg autodiff.ParallelConfig) FitOption {
	return train.WithParallel(cfg)
}

// WithEpochHook registers a function called after every epoch.
func WithEpochHook(fn func(EpochStats)) FitOption {
	return train.WithEpochHook(fn)
}

// Fit trains a single cell until early stopping or the epoch budget, and
// returns the estimator restored to its best epoch.
func Fit(ctx context.Context, cell Cell, ds *Dataset, opts ...FitOption) (*FitResult, error) {
	return train.New(cell, ds, opts...).Run(ctx)
}

// Grid search

// Runner trains every cell of a grid search.
type Runner = gridsearch.Runner

// Results is the runs × depths grid of best losses.
type Results = gridsearch.Results

// NewRunner creates a Runner for hp over ds.
func NewRunner(hp Hyperparameters, ds *Dataset, opts ...gridsearch.Option) (*Runner, error) {
	return gridsearch.NewRunner(hp, ds, opts...)
}

// LoadResults reads a results grid written by a Runner.
func LoadResults(path string) (*Results, error) {
	return gridsearch.LoadResults(path)
}
