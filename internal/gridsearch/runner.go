package gridsearch

import (
	"context"
	"io"
	"time"

	"github.com/ivimnet/ivimnet/internal/config"
	"github.com/ivimnet/ivimnet/internal/data"
	"github.com/ivimnet/ivimnet/internal/parallel"
	"github.com/ivimnet/ivimnet/internal/train"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Option configures a Runner.
type Option func(*Runner)

// WithProgress draws a progress bar for every cell to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

// WithParallel sets how training kernels split rows across goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(r *Runner) { r.parallel = &cfg }
}

// WithCellHook registers a function called after every completed cell, once
// the results have been saved.
func WithCellHook(fn func(*train.Result)) Option {
	return func(r *Runner) { r.onCell = fn }
}

// WithResume continues a previous grid: cells completed in prev are kept and
// not retrained. prev must have the same dimensions as the search.
func WithResume(prev *Results) Option {
	return func(r *Runner) { r.resume = prev }
}

// WithoutManifest disables the YAML manifest next to the results file.
func WithoutManifest() Option {
	return func(r *Runner) { r.manifest = false }
}

// Runner trains every (run, depth) cell of a grid search in order.
type Runner struct {
	hp       config.Hyperparameters
	ds       *data.Dataset
	progress io.Writer
	parallel *parallel.Config
	onCell   func(*train.Result)
	resume   *Results
	manifest bool
}

// NewRunner creates a Runner for hp over ds. The hyperparameters are
// validated here so a bad search fails before any training.
func NewRunner(hp config.Hyperparameters, ds *data.Dataset, opts ...Option) (*Runner, error) {
	if err := hp.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Len() == 0 {
		return nil, errors.New("empty dataset")
	}
	r := &Runner{hp: hp, ds: ds, manifest: true}
	for _, opt := range opts {
		opt(r)
	}
	if r.resume != nil {
		runs, depths := r.resume.Dims()
		if runs != hp.Runs || depths != hp.MaxDepth {
			return nil, errors.Errorf("cannot resume a %dx%d grid as %dx%d", runs, depths, hp.Runs, hp.MaxDepth)
		}
	}
	return r, nil
}

// Run trains the grid, run by run and depth by depth. The results file is
// rewritten after every cell, so an interrupted search keeps everything
// completed so far. The first failure aborts the search; the partial grid
// is returned along with the error.
func (r *Runner) Run(ctx context.Context) (*Results, error) {
	hp := r.hp
	results := NewResults(hp.Runs, hp.MaxDepth)
	var m *Manifest
	if r.manifest {
		m = NewManifest(hp)
	}

	if r.resume != nil {
		for run := range hp.Runs {
			for depth := range hp.MaxDepth {
				cell, _ := r.resume.Get(run, depth)
				if !cell.Done() {
					continue
				}
				if err := results.Record(run, depth, cell); err != nil {
					return results, err
				}
				if m != nil {
					m.Add(CellRecord{Run: run, Depth: depth, Status: cell.Status.String(),
						BestLoss: cell.BestLoss, Epochs: cell.Epochs})
				}
			}
		}
		klog.Infof("Resuming grid search with %d of %d cells completed", results.Completed(), hp.Runs*hp.MaxDepth)
	}

	start := time.Now()
	for run := range hp.Runs {
		for _, depth := range hp.Depths() {
			if c, _ := results.Get(run, depth); c.Done() {
				continue
			}

			res, err := r.trainCell(ctx, hp.Cell(run, depth))
			if err != nil {
				return results, errors.Wrapf(err, "grid search cell (run %d, depth %d)", run, depth)
			}

			cell := Cell{BestLoss: res.BestLoss, Status: StatusOf(res.Reason), Epochs: res.Epochs}
			if err := results.Record(run, depth, cell); err != nil {
				return results, err
			}
			if err := results.Save(hp.Output); err != nil {
				return results, errors.Wrapf(err, "saving results after run %d, depth %d", run, depth)
			}
			if m != nil {
				m.Add(CellRecord{
					Run:       run,
					Depth:     depth,
					Status:    cell.Status.String(),
					BestLoss:  res.BestLoss,
					BestEpoch: res.BestEpoch,
					Epochs:    res.Epochs,
					Seconds:   res.Duration.Seconds(),
				})
				if err := WriteManifest(ManifestPath(hp.Output), m); err != nil {
					return results, err
				}
			}
			if r.onCell != nil {
				r.onCell(res)
			}
		}
	}

	klog.Infof("Grid search finished: %d cells in %s, results in %q",
		results.Completed(), time.Since(start).Round(time.Second), hp.Output)
	return results, nil
}

func (r *Runner) trainCell(ctx context.Context, cell config.Cell) (*train.Result, error) {
	var opts []train.Option
	if r.progress != nil {
		opts = append(opts, train.WithProgress(r.progress))
	}
	if r.parallel != nil {
		opts = append(opts, train.WithParallel(*r.parallel))
	}
	return train.New(cell, r.ds, opts...).Run(ctx)
}
