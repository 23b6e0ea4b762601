package train

// InitialBestLoss is the best-loss sentinel a fresh EarlyStopping starts from.
const InitialBestLoss = 1e16

// Decision is the outcome of observing one epoch loss.
type Decision struct {
	// Improved is set when the loss is strictly below the best so far. The
	// caller snapshots the parameters in that case.
	Improved bool
	// Stop is set when the number of consecutive epochs without improvement
	// reaches the patience.
	Stop bool
}

// EarlyStopping tracks the best epoch loss and the number of consecutive
// epochs that failed to improve on it.
//
// A loss that is not strictly smaller than the best (including NaN) counts as
// a bad epoch.
type EarlyStopping struct {
	patience  int
	best      float64
	bad       int
	epochs    int
	bestEpoch int
}

// NewEarlyStopping creates an EarlyStopping that stops after patience bad epochs.
func NewEarlyStopping(patience int) *EarlyStopping {
	return &EarlyStopping{
		patience: patience,
		best:     InitialBestLoss,
	}
}

// Observe records the loss of the next epoch.
func (e *EarlyStopping) Observe(loss float64) Decision {
	e.epochs++
	if loss < e.best {
		e.best = loss
		e.bad = 0
		e.bestEpoch = e.epochs
		return Decision{Improved: true}
	}
	e.bad++
	return Decision{Stop: e.bad >= e.patience}
}

// Best returns the smallest loss observed, or InitialBestLoss.
func (e *EarlyStopping) Best() float64 {
	return e.best
}

// BestEpoch returns the 1-based epoch of the best loss, or 0.
func (e *EarlyStopping) BestEpoch() int {
	return e.bestEpoch
}

// BadEpochs returns the current number of consecutive bad epochs.
func (e *EarlyStopping) BadEpochs() int {
	return e.bad
}

// Epochs returns the number of observed epochs.
func (e *EarlyStopping) Epochs() int {
	return e.epochs
}
