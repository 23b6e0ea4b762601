// Package gridsearch runs the (run, depth) grid of training cells and keeps
// the grid of best losses.
package gridsearch

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivimnet/ivimnet/internal/train"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// Array names in the results archive.
const (
	KeyBestLoss = "best_loss"
	KeyStatus   = "status"
	KeyEpochs   = "epochs"
)

// Status tells whether a cell has completed and how.
type Status int

const (
	// Pending marks a cell that has not completed. Its best loss is NaN.
	Pending Status = iota
	// EarlyStopped marks a cell that ran out of patience.
	EarlyStopped
	// Exhausted marks a cell that ran out of epochs before patience.
	Exhausted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case EarlyStopped:
		return "early-stopped"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// StatusOf maps a training stop reason to a cell status.
func StatusOf(reason train.StopReason) Status {
	switch reason {
	case train.StoppedEarly:
		return EarlyStopped
	case train.Exhausted:
		return Exhausted
	default:
		return Pending
	}
}

// Cell is one entry of the results grid.
type Cell struct {
	BestLoss float64
	Status   Status
	Epochs   int
}

// Done reports whether the cell has completed.
func (c Cell) Done() bool {
	return c.Status != Pending
}

// Results is the runs × depths grid of best training losses.
//
// Cells that have not completed hold NaN and the Pending status, so a true
// zero loss is never confused with a missing one.
type Results struct {
	runs, depths int
	bestLoss     *mat.Dense
	status       *mat.Dense
	epochs       *mat.Dense
}

// NewResults creates a grid with every cell pending.
func NewResults(runs, depths int) *Results {
	r := &Results{
		runs:     runs,
		depths:   depths,
		bestLoss: mat.NewDense(runs, depths, nil),
		status:   mat.NewDense(runs, depths, nil),
		epochs:   mat.NewDense(runs, depths, nil),
	}
	for i := range runs {
		for j := range depths {
			r.bestLoss.Set(i, j, math.NaN())
		}
	}
	return r
}

// Dims returns the number of runs and depths.
func (r *Results) Dims() (runs, depths int) {
	return r.runs, r.depths
}

func (r *Results) check(run, depth int) error {
	if run < 0 || run >= r.runs || depth < 0 || depth >= r.depths {
		return errors.Errorf("cell (%d, %d) outside the %dx%d grid", run, depth, r.runs, r.depths)
	}
	return nil
}

// Record stores the outcome of a completed cell.
func (r *Results) Record(run, depth int, cell Cell) error {
	if err := r.check(run, depth); err != nil {
		return err
	}
	if !cell.Done() {
		return errors.Errorf("cell (%d, %d): cannot record a pending cell", run, depth)
	}
	r.bestLoss.Set(run, depth, cell.BestLoss)
	r.status.Set(run, depth, float64(cell.Status))
	r.epochs.Set(run, depth, float64(cell.Epochs))
	return nil
}

// Get returns the cell at (run, depth).
func (r *Results) Get(run, depth int) (Cell, error) {
	if err := r.check(run, depth); err != nil {
		return Cell{}, err
	}
	return Cell{
		BestLoss: r.bestLoss.At(run, depth),
		Status:   Status(r.status.At(run, depth)),
		Epochs:   int(r.epochs.At(run, depth)),
	}, nil
}

// Completed returns the number of cells that are not pending.
func (r *Results) Completed() int {
	var n int
	for _, s := range r.status.RawMatrix().Data {
		if Status(s) != Pending {
			n++
		}
	}
	return n
}

// BestLoss returns a copy of the best-loss matrix.
func (r *Results) BestLoss() *mat.Dense {
	return mat.DenseCopyOf(r.bestLoss)
}

// Save writes the grid to a NumPy archive at path.
//
// The archive is written to a temporary file in the same directory and then
// renamed over path, so readers never see a partially written grid.
func (r *Results) Save(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temporary results file in %q", dir)
	}
	defer os.Remove(tmp.Name())

	w := npz.NewWriter(tmp)
	for _, arr := range []struct {
		name string
		m    *mat.Dense
	}{
		{KeyBestLoss, r.bestLoss},
		{KeyStatus, r.status},
		{KeyEpochs, r.epochs},
	} {
		if err := w.Write(arr.name, arr.m); err != nil {
			tmp.Close()
			return errors.Wrapf(err, "writing %q", arr.name)
		}
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "finishing results archive")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing results archive")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing results archive")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replacing %q", path)
}

// LoadResults reads a grid written by Save.
//
// Archives holding only best_loss are accepted; their zero entries are
// treated as pending, which is how grids without a status array mark
// missing cells.
func LoadResults(path string) (*Results, error) {
	rd, err := npz.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", path)
	}
	defer rd.Close()

	keys := make(map[string]string)
	for _, k := range rd.Keys() {
		keys[strings.TrimSuffix(k, ".npy")] = k
	}

	read := func(name string) (*mat.Dense, error) {
		key, ok := keys[name]
		if !ok {
			return nil, nil
		}
		var m mat.Dense
		if err := rd.Read(key, &m); err != nil {
			return nil, errors.Wrapf(err, "reading %q from %q", name, path)
		}
		return &m, nil
	}

	best, err := read(KeyBestLoss)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, errors.Errorf("%q has no %q array", path, KeyBestLoss)
	}
	runs, depths := best.Dims()
	r := NewResults(runs, depths)

	status, err := read(KeyStatus)
	if err != nil {
		return nil, err
	}
	epochs, err := read(KeyEpochs)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		for j := range depths {
			cell := Cell{BestLoss: best.At(i, j), Status: EarlyStopped}
			if status != nil {
				cell.Status = Status(status.At(i, j))
			} else if cell.BestLoss == 0 {
				cell.Status = Pending
			}
			if epochs != nil {
				cell.Epochs = int(epochs.At(i, j))
			}
			if cell.Done() {
				if err := r.Record(i, j, cell); err != nil {
					return nil, err
				}
			}
		}
	}
	return r, nil
}
