package data

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Batcher splits a Dataset into mini-batches, reshuffling on every call to
// Epoch when a random source is set.
type Batcher struct {
	ds        *Dataset
	batchSize int
	dropLast  bool
	rng       *rand.Rand
	indices   []int
}

// NewBatcher creates a Batcher over ds.
//
// A nil rng keeps the sample order. With dropLast a trailing partial batch
// is skipped; it is an error if that leaves no batch at all.
func NewBatcher(ds *Dataset, batchSize int, dropLast bool, rng *rand.Rand) (*Batcher, error) {
	n := ds.Len()
	if n == 0 {
		return nil, errors.New("empty dataset")
	}
	if batchSize <= 0 {
		return nil, errors.Errorf("batch size must be positive, got %d", batchSize)
	}
	if dropLast && n < batchSize {
		return nil, errors.Errorf("dropping the last partial batch leaves no batch: %d samples, batch size %d", n, batchSize)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return &Batcher{
		ds:        ds,
		batchSize: batchSize,
		dropLast:  dropLast,
		rng:       rng,
		indices:   indices,
	}, nil
}

// NumBatches returns the number of batches per epoch.
func (b *Batcher) NumBatches() int {
	n := len(b.indices)
	if b.dropLast {
		return n / b.batchSize
	}
	return (n + b.batchSize - 1) / b.batchSize
}

// Epoch returns the batches of one pass over the data.
func (b *Batcher) Epoch() []*mat.Dense {
	if b.rng != nil {
		b.rng.Shuffle(len(b.indices), func(i, j int) {
			b.indices[i], b.indices[j] = b.indices[j], b.indices[i]
		})
	}

	_, width := b.ds.X.Dims()
	batches := make([]*mat.Dense, 0, b.NumBatches())
	for start := 0; start < len(b.indices); start += b.batchSize {
		end := min(start+b.batchSize, len(b.indices))
		if b.dropLast && end-start < b.batchSize {
			break
		}

		batch := mat.NewDense(end-start, width, nil)
		for i, idx := range b.indices[start:end] {
			batch.SetRow(i, b.ds.X.RawRowView(idx))
		}
		batches = append(batches, batch)
	}
	return batches
}
