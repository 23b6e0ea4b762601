// Package train fits one IVIM estimator: the epoch loop, early stopping and
// the in-memory best-model snapshot.
package train

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/ivimnet/ivimnet/internal/config"
	"github.com/ivimnet/ivimnet/internal/data"
	"github.com/ivimnet/ivimnet/internal/ivim"
	"github.com/ivimnet/ivimnet/internal/nn"
	"github.com/ivimnet/ivimnet/internal/optim"
	"github.com/ivimnet/ivimnet/internal/parallel"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"
)

// StopReason tells why a cell finished.
type StopReason int

const (
	// StoppedEarly means patience ran out.
	StoppedEarly StopReason = iota + 1
	// Exhausted means the epoch budget ran out first.
	Exhausted
)

// String returns the reason name.
func (r StopReason) String() string {
	switch r {
	case StoppedEarly:
		return "early-stopped"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result is the outcome of one training run.
type Result struct {
	Run, Depth int
	BestLoss   float64
	BestEpoch  int
	Epochs     int
	Reason     StopReason
	Duration   time.Duration

	// Losses holds the summed batch loss of every epoch.
	Losses []float64
	// Snapshot is a copy of the parameters at the best epoch.
	Snapshot map[string]*mat.Dense
	// Net holds the estimator restored to Snapshot.
	Net *ivim.Net
}

// EpochStats is reported after every epoch.
type EpochStats struct {
	Run, Depth int
	Epoch      int
	Loss       float64
	Best       float64
	BadEpochs  int
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithProgress draws a progress bar over the epoch budget to w.
func WithProgress(w io.Writer) Option {
	return func(t *Trainer) { t.progress = w }
}

// WithParallel sets how the backend splits large batches across goroutines.
func WithParallel(cfg parallel.Config) Option {
	return func(t *Trainer) { t.parallel = cfg }
}

// WithEpochHook registers a function called after every epoch.
func WithEpochHook(fn func(EpochStats)) Option {
	return func(t *Trainer) { t.onEpoch = fn }
}

// Trainer fits an estimator of one cell's depth to a dataset.
type Trainer struct {
	cell     config.Cell
	ds       *data.Dataset
	progress io.Writer
	parallel parallel.Config
	onEpoch  func(EpochStats)
}

// New creates a Trainer for cell over ds.
func New(cell config.Cell, ds *data.Dataset, opts ...Option) *Trainer {
	t := &Trainer{
		cell:     cell,
		ds:       ds,
		parallel: parallel.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run trains a freshly initialised estimator until patience or the epoch
// budget runs out.
//
// The context is checked between epochs.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	cell := t.cell
	start := time.Now()

	src := cell.Source()
	backend := autodiff.NewWithConfig(t.parallel)
	net, err := ivim.NewNet(cell.BValues(), cell.Depth(), backend, src)
	if err != nil {
		return nil, err
	}
	if _, w := t.ds.X.Dims(); w != net.Width() {
		return nil, errors.Errorf("data has %d signal columns, estimator expects %d", w, net.Width())
	}

	var rng *rand.Rand
	if cell.Shuffle() {
		rng = rand.New(src)
	}
	batcher, err := data.NewBatcher(t.ds, cell.BatchSize(), cell.DropLast(), rng)
	if err != nil {
		return nil, err
	}
	opt, err := optim.New(cell.Optimizer(), net.Parameters(), cell.LearningRate(), cell.Momentum())
	if err != nil {
		return nil, err
	}
	lossFn := nn.NewMSELoss(backend)
	stopper := NewEarlyStopping(cell.Patience())

	klog.V(1).Infof("Run %d, depth %d: %s parameters, %d batches per epoch",
		cell.Run(), cell.Depth(), humanize.Comma(int64(countParams(net))), batcher.NumBatches())

	bar := t.newBar(cell)
	res := &Result{
		Run:    cell.Run(),
		Depth:  cell.Depth(),
		Reason: Exhausted,
		Losses: make([]float64, 0, min(cell.Epochs(), 1024)),
	}

	tape := backend.Tape()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	for epoch := 1; epoch <= cell.Epochs(); epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "run %d, depth %d interrupted at epoch %d", cell.Run(), cell.Depth(), epoch)
		}

		var running float64
		for _, batch := range batcher.Epoch() {
			tape.Clear()
			pred := net.Forward(batch)
			loss := lossFn.Forward(pred.Signal, batch)
			opt.Step(backend.Backward(loss))
			opt.ZeroGrad()
			running += loss.At(0, 0)
		}
		tape.Clear()
		res.Losses = append(res.Losses, running)

		if math.IsNaN(running) || math.IsInf(running, 0) {
			klog.Warningf("Run %d, depth %d, epoch %d: non-finite loss %v", cell.Run(), cell.Depth(), epoch, running)
		}

		decision := stopper.Observe(running)
		if decision.Improved {
			res.Snapshot = net.StateDict()
		}
		klog.V(1).Infof("Run: %d; Blocks: %d; Epoch: %d; Bad epochs: %d; Loss: %g",
			cell.Run(), cell.Depth(), epoch, stopper.BadEpochs(), running)
		if t.onEpoch != nil {
			t.onEpoch(EpochStats{
				Run:       cell.Run(),
				Depth:     cell.Depth(),
				Epoch:     epoch,
				Loss:      running,
				Best:      stopper.Best(),
				BadEpochs: stopper.BadEpochs(),
			})
		}
		if bar != nil {
			bar.Describe(fmt.Sprintf("run %d depth %d loss %.3g", cell.Run(), cell.Depth(), stopper.Best()))
			if err := bar.Add(1); err != nil {
				klog.V(2).Infof("Progress bar: %v", err)
			}
		}

		if decision.Stop {
			res.Reason = StoppedEarly
			break
		}
	}
	if bar != nil {
		if err := bar.Finish(); err != nil {
			klog.V(2).Infof("Progress bar: %v", err)
		}
	}

	res.Epochs = stopper.Epochs()
	res.BestLoss = stopper.Best()
	res.BestEpoch = stopper.BestEpoch()
	res.Duration = time.Since(start)

	if res.Snapshot != nil {
		if err := net.LoadStateDict(res.Snapshot); err != nil {
			return nil, errors.Wrap(err, "restoring best parameters")
		}
	}
	res.Net = net

	klog.Infof("Run %d, depth %d: %s after %s epochs, best loss %g at epoch %d (%s)",
		res.Run, res.Depth, res.Reason, humanize.Comma(int64(res.Epochs)), res.BestLoss, res.BestEpoch,
		res.Duration.Round(time.Millisecond))
	return res, nil
}

func (t *Trainer) newBar(cell config.Cell) *progressbar.ProgressBar {
	if t.progress == nil {
		return nil
	}
	return progressbar.NewOptions(cell.Epochs(),
		progressbar.OptionSetWriter(t.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("run %d depth %d", cell.Run(), cell.Depth())),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func countParams(net *ivim.Net) int {
	var n int
	for _, p := range net.Parameters() {
		r, c := p.Value().Dims()
		n += r * c
	}
	return n
}
