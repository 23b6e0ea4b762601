package optim_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/ivimnet/ivimnet/internal/autodiff"
	"github.com/ivimnet/ivimnet/internal/nn"
	"github.com/ivimnet/ivimnet/internal/optim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func scalarParam(v float64) *nn.Parameter {
	return nn.NewParameter("x", mat.NewDense(1, 1, []float64{v}))
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	param := scalarParam(2.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1})

	optimizer.Step(map[*mat.Dense]*mat.Dense{
		param.Value(): mat.NewDense(1, 1, []float64{1.0}),
	})

	// x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, param.Value().At(0, 0), 1e-12)
}

// TestSGD_WithMomentum tests SGD with momentum.
func TestSGD_WithMomentum(t *testing.T) {
	param := scalarParam(1.0)
	optimizer := optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	grads := map[*mat.Dense]*mat.Dense{param.Value(): mat.NewDense(1, 1, []float64{1.0})}

	optimizer.Step(grads) // v = 1,   x = 1 - 0.1
	optimizer.Step(grads) // v = 1.9, x = 0.9 - 0.19
	assert.InDelta(t, 0.71, param.Value().At(0, 0), 1e-12)
}

// TestAdam_FirstStep tests that the first Adam step moves each parameter by lr.
func TestAdam_FirstStep(t *testing.T) {
	param := nn.NewParameter("w", mat.NewDense(1, 2, []float64{1.0, -1.0}))
	optimizer := optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{LR: 0.001})

	optimizer.Step(map[*mat.Dense]*mat.Dense{
		param.Value(): mat.NewDense(1, 2, []float64{0.5, -3.0}),
	})

	// With bias correction m_hat/sqrt(v_hat) = sign(g) on the first step.
	assert.InDelta(t, 0.999, param.Value().At(0, 0), 1e-9)
	assert.InDelta(t, -0.999, param.Value().At(0, 1), 1e-9)
	assert.Equal(t, 1, optimizer.GetTimestep())
}

// TestAdam_Defaults tests default hyperparameters.
func TestAdam_Defaults(t *testing.T) {
	optimizer := optim.NewAdam(nil, optim.AdamConfig{})
	assert.Equal(t, 0.001, optimizer.GetLR())

	optimizer.SetLR(0.01)
	assert.Equal(t, 0.01, optimizer.GetLR())
}

// TestAdam_SkipsMissingGradients tests that parameters absent from the map stay put.
func TestAdam_SkipsMissingGradients(t *testing.T) {
	a, b := scalarParam(1), scalarParam(2)
	optimizer := optim.NewAdam([]*nn.Parameter{a, b}, optim.AdamConfig{})

	optimizer.Step(map[*mat.Dense]*mat.Dense{a.Value(): mat.NewDense(1, 1, []float64{1})})
	assert.Less(t, a.Value().At(0, 0), 1.0)
	assert.Equal(t, 2.0, b.Value().At(0, 0))
}

// TestAdam_ConvergesOnRegression tests that Adam fits a linear layer through the tape.
func TestAdam_ConvergesOnRegression(t *testing.T) {
	backend := autodiff.New()
	layer := nn.NewLinear(2, 1, backend, rand.NewPCG(3, 4))
	loss := nn.NewMSELoss(backend)
	optimizer := optim.NewAdam(layer.Parameters(), optim.AdamConfig{LR: 0.02})

	// y = 2·x0 − 3·x1 + 0.5
	x := mat.NewDense(4, 2, []float64{0, 0, 1, 0, 0, 1, 1, 1})
	y := mat.NewDense(4, 1, []float64{0.5, 2.5, -2.5, -0.5})

	tape := backend.Tape()
	tape.StartRecording()

	var last float64
	for range 3000 {
		tape.Clear()
		l := loss.Forward(layer.Forward(x), y)
		optimizer.Step(backend.Backward(l))
		optimizer.ZeroGrad()
		last = l.At(0, 0)
	}

	assert.Less(t, last, 1e-3)
	assert.InDelta(t, 2.0, layer.Weight().Value().At(0, 0), 0.05)
	assert.InDelta(t, -3.0, layer.Weight().Value().At(0, 1), 0.05)
	assert.InDelta(t, 0.5, layer.Bias().Value().At(0, 0), 0.05)
}

// TestNew tests optimizer selection by name.
func TestNew(t *testing.T) {
	params := []*nn.Parameter{scalarParam(0)}

	opt, err := optim.New(optim.KindAdam, params, 0.002, 0)
	require.NoError(t, err)
	assert.IsType(t, &optim.Adam{}, opt)
	assert.Equal(t, 0.002, opt.GetLR())

	opt, err = optim.New(optim.KindSGD, params, 0.1, 0.9)
	require.NoError(t, err)
	assert.IsType(t, &optim.SGD{}, opt)

	_, err = optim.New("lbfgs", params, 0.1, 0)
	assert.Error(t, err)
}

// TestZeroGrad tests that ZeroGrad clears parameter gradients.
func TestZeroGrad(t *testing.T) {
	param := scalarParam(1)
	param.SetGrad(mat.NewDense(1, 1, []float64{1}))

	optim.NewAdam([]*nn.Parameter{param}, optim.AdamConfig{}).ZeroGrad()
	assert.Nil(t, param.Grad())

	param.SetGrad(mat.NewDense(1, 1, []float64{1}))
	optim.NewSGD([]*nn.Parameter{param}, optim.SGDConfig{}).ZeroGrad()
	assert.Nil(t, param.Grad())
	assert.False(t, math.IsNaN(param.Value().At(0, 0)))
}
