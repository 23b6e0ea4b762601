package ivim

import (
	"math/rand/v2"

	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/ivimnet/ivimnet/internal/nn"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// EncoderBlocks returns the block descriptors of an estimator over width
// input features: depth hidden blocks {Linear width→width, ELU} followed by
// the head {Linear width→3, Abs}.
func EncoderBlocks(width, depth int) []nn.Block {
	blocks := make([]nn.Block, 0, depth+1)
	for range depth {
		blocks = append(blocks, nn.Block{In: width, Out: width, Activation: nn.ActELU})
	}
	return append(blocks, nn.Block{In: width, Out: NumParams, Activation: nn.ActAbs})
}

// Prediction is the output of a forward pass.
type Prediction struct {
	// Signal is the reconstructed signal, [n, L].
	Signal *mat.Dense
	// Params holds the estimated parameters, [n, 3] with columns Dp, Dt, Fp.
	Params *mat.Dense
}

// Dp returns the estimated pseudo-diffusion coefficients.
func (p Prediction) Dp() []float64 {
	return mat.Col(nil, ColDp, p.Params)
}

// Dt returns the estimated tissue diffusion coefficients.
func (p Prediction) Dt() []float64 {
	return mat.Col(nil, ColDt, p.Params)
}

// Fp returns the estimated perfusion fractions.
func (p Prediction) Fp() []float64 {
	return mat.Col(nil, ColFp, p.Params)
}

// Canonical returns a copy of Params with every row passed through Canonical.
func (p Prediction) Canonical() *mat.Dense {
	out := mat.DenseCopyOf(p.Params)
	n, _ := out.Dims()
	for i := range n {
		row := out.RawRowView(i)
		row[ColDp], row[ColDt], row[ColFp] = Canonical(row[ColDp], row[ColDt], row[ColFp])
	}
	return out
}

// Net is the IVIM estimator followed by the signal reconstructor.
//
// The input is a batch of signals at the non-zero b-values, [n, L]. The
// estimator maps it to non-negative parameters and the reconstructor maps
// those back to a signal at the same b-values, so the network can be
// trained against its own input.
type Net struct {
	bValues []float64
	depth   int
	blocks  []nn.Block
	encoder *nn.Sequential
	backend *autodiff.Backend
}

// NewNet builds a Net of the given depth over bValues.
//
// Zero b-values are dropped; the input width L is the number of remaining
// values. Parameters are initialised from src.
func NewNet(bValues []float64, depth int, backend *autodiff.Backend, src rand.Source) (*Net, error) {
	if depth < 0 {
		return nil, errors.Errorf("depth must be non-negative, got %d", depth)
	}
	nonZero := NonZero(bValues)
	if len(nonZero) == 0 {
		return nil, errors.New("no non-zero b-values")
	}

	blocks := EncoderBlocks(len(nonZero), depth)
	encoder, err := nn.Build(blocks, backend, src)
	if err != nil {
		return nil, errors.Wrapf(err, "building depth-%d estimator", depth)
	}

	return &Net{
		bValues: nonZero,
		depth:   depth,
		blocks:  blocks,
		encoder: encoder,
		backend: backend,
	}, nil
}

// Forward estimates parameters for x and reconstructs the signal from them.
func (n *Net) Forward(x *mat.Dense) Prediction {
	params := n.encoder.Forward(x)
	signal := Reconstruct(params, n.bValues)
	if n.backend.Tape().IsRecording() {
		n.backend.Record(NewSignalOp(params, signal, n.bValues))
	}
	return Prediction{Signal: signal, Params: params}
}

// Parameters returns the trainable parameters of the estimator.
func (n *Net) Parameters() []*nn.Parameter {
	return n.encoder.Parameters()
}

// StateDict returns a copy of the estimator parameters.
func (n *Net) StateDict() map[string]*mat.Dense {
	return n.encoder.StateDict()
}

// LoadStateDict restores estimator parameters from a snapshot.
func (n *Net) LoadStateDict(stateDict map[string]*mat.Dense) error {
	return n.encoder.LoadStateDict(stateDict)
}

// Depth returns the number of hidden blocks.
func (n *Net) Depth() int {
	return n.depth
}

// Blocks returns the block descriptors the estimator was built from.
func (n *Net) Blocks() []nn.Block {
	return append([]nn.Block(nil), n.blocks...)
}

// BValues returns the non-zero b-values of the input and output signals.
func (n *Net) BValues() []float64 {
	return append([]float64(nil), n.bValues...)
}

// Width returns the input width L.
func (n *Net) Width() int {
	return len(n.bValues)
}
