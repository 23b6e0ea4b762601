package nn

import (
	"math/rand/v2"

	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/pkg/errors"
)

// Activation selects the non-linearity that follows a block's affine map.
type Activation int

const (
	// Identity applies no activation.
	Identity Activation = iota
	// ActELU applies ELU with α = 1.
	ActELU
	// ActAbs applies the absolute value.
	ActAbs
)

// String returns the activation name.
func (a Activation) String() string {
	switch a {
	case Identity:
		return "identity"
	case ActELU:
		return "elu"
	case ActAbs:
		return "abs"
	default:
		return "unknown"
	}
}

// Block describes one layer of a network as data: an optional affine map
// from In to Out features followed by an activation.
//
// A Block with In == Out == 0 has no affine map and only applies its
// activation; it keeps the previous width.
type Block struct {
	In         int
	Out        int
	Activation Activation
}

// Build interprets a list of block descriptors into a Sequential network.
//
// Each affine block becomes a Linear module initialised from src, followed by
// its activation module. Consecutive affine blocks must agree on width.
func Build(blocks []Block, backend *autodiff.Backend, src rand.Source) (*Sequential, error) {
	seq := NewSequential()
	width := 0

	for i, b := range blocks {
		switch {
		case b.In == 0 && b.Out == 0:
			// activation only
		case b.In <= 0 || b.Out <= 0:
			return nil, errors.Errorf("block %d: invalid dimensions %d -> %d", i, b.In, b.Out)
		case width != 0 && b.In != width:
			return nil, errors.Errorf("block %d: expected %d input features, got %d", i, width, b.In)
		default:
			seq.Add(NewLinear(b.In, b.Out, backend, src))
			width = b.Out
		}

		switch b.Activation {
		case Identity:
		case ActELU:
			seq.Add(NewELU(1, backend))
		case ActAbs:
			seq.Add(NewAbs(backend))
		default:
			return nil, errors.Errorf("block %d: unknown activation %d", i, int(b.Activation))
		}
	}

	return seq, nil
}
