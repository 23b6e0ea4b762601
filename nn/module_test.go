// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/ivimnet/ivimnet/autodiff"
	"github.com/ivimnet/ivimnet/nn"
	"gonum.org/v1/gonum/mat"
)

// TestModuleInterface verifies that concrete types implement Module interface.
func TestModuleInterface(t *testing.T) {
	backend := autodiff.New()
	src := rand.NewPCG(1, 2)

	tests := []struct {
		name   string
		module nn.Module
	}{
		{
			name:   "Linear",
			module: nn.NewLinear(10, 5, backend, src),
		},
		{
			name: "Sequential",
			module: nn.NewSequential(
				nn.NewLinear(10, 5, backend, src),
				nn.NewELU(1, backend),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Verify Forward works
			input := mat.NewDense(2, 10, nil)
			_ = tt.module.Forward(input)

			// Verify Parameters works
			params := tt.module.Parameters()
			if params == nil {
				t.Error("Parameters() returned nil, expected non-nil slice")
			}

			// Verify StateDict works
			stateDict := tt.module.StateDict()
			if stateDict == nil {
				t.Error("StateDict() returned nil, expected non-nil map")
			}
		})
	}
}

// TestParameterInterface verifies that concrete Parameter implements interface.
func TestParameterInterface(t *testing.T) {
	value := mat.NewDense(3, 3, nil)

	param := nn.NewParameter("test.weight", value)

	if name := param.Name(); name != "test.weight" {
		t.Errorf("Name() = %q, want %q", name, "test.weight")
	}

	if got := param.Value(); got != value {
		t.Error("Value() returned different matrix than provided")
	}

	if grad := param.Grad(); grad != nil {
		t.Error("Grad() should be nil before backward pass")
	}

	grad := mat.NewDense(3, 3, nil)
	param.SetGrad(grad)
	if got := param.Grad(); got != grad {
		t.Error("Grad() returned different matrix after SetGrad")
	}

	param.ZeroGrad()
	if grad := param.Grad(); grad != nil {
		t.Error("Grad() should be nil after ZeroGrad()")
	}
}

// TestModuleComposition verifies modules can be composed.
func TestModuleComposition(t *testing.T) {
	backend := autodiff.New()
	src := rand.NewPCG(3, 4)

	model, err := nn.Build([]nn.Block{
		{In: 8, Out: 8, Activation: nn.ActELU},
		{In: 8, Out: 3, Activation: nn.ActAbs},
	}, backend, src)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var _ nn.Module = model

	input := mat.NewDense(2, 8, nil)
	output := model.Forward(input)
	if r, c := output.Dims(); r != 2 || c != 3 {
		t.Errorf("Output shape = [%d %d], want [2 3]", r, c)
	}

	// 2 Linear layers: weights + biases = 4 parameters
	if params := model.Parameters(); len(params) != 4 {
		t.Errorf("Parameters() returned %d params, want 4", len(params))
	}
}

// TestSaveLoad verifies a state dictionary survives a round trip through disk.
func TestSaveLoad(t *testing.T) {
	backend := autodiff.New()
	path := filepath.Join(t.TempDir(), "model.npz")

	model := nn.NewSequential(
		nn.NewLinear(4, 4, backend, rand.NewPCG(1, 1)),
		nn.NewELU(1, backend),
		nn.NewLinear(4, 2, backend, rand.NewPCG(1, 1)),
	)
	if err := nn.Save(model, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	restored := nn.NewSequential(
		nn.NewLinear(4, 4, backend, rand.NewPCG(9, 9)),
		nn.NewELU(1, backend),
		nn.NewLinear(4, 2, backend, rand.NewPCG(9, 9)),
	)
	if err := nn.Load(path, restored); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := model.StateDict()
	got := restored.StateDict()
	for name, m := range want {
		if !mat.Equal(m, got[name]) {
			t.Errorf("parameter %q differs after Load", name)
		}
	}
}
