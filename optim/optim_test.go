// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"math"
	"testing"

	"github.com/ivimnet/ivimnet/nn"
	"github.com/ivimnet/ivimnet/optim"
	"gonum.org/v1/gonum/mat"
)

// TestOptimizerInterface verifies that both optimizers update parameters
// through the common interface.
func TestOptimizerInterface(t *testing.T) {
	tests := []struct {
		name string
		make func([]*nn.Parameter) optim.Optimizer
		lr   float64
	}{
		{
			name: "SGD",
			make: func(p []*nn.Parameter) optim.Optimizer {
				return optim.NewSGD(p, optim.SGDConfig{LR: 0.1})
			},
			lr: 0.1,
		},
		{
			name: "Adam",
			make: func(p []*nn.Parameter) optim.Optimizer {
				return optim.NewAdam(p, optim.AdamConfig{LR: 0.01})
			},
			lr: 0.01,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mat.NewDense(1, 2, []float64{1, -1})
			param := nn.NewParameter("w", w)
			opt := tt.make([]*nn.Parameter{param})

			if got := opt.GetLR(); got != tt.lr {
				t.Errorf("GetLR() = %g, want %g", got, tt.lr)
			}

			opt.Step(map[*mat.Dense]*mat.Dense{w: mat.NewDense(1, 2, []float64{1, -1})})
			if w.At(0, 0) >= 1 || w.At(0, 1) <= -1 {
				t.Errorf("Step() did not move against the gradient: %v", mat.Formatted(w))
			}
		})
	}
}

// TestNew verifies selection by kind.
func TestNew(t *testing.T) {
	w := mat.NewDense(1, 1, []float64{0})
	params := []*nn.Parameter{nn.NewParameter("w", w)}

	for _, kind := range []optim.Kind{"", optim.KindAdam, optim.KindSGD} {
		opt, err := optim.New(kind, params, 0.5, 0)
		if err != nil {
			t.Fatalf("New(%q) error = %v", kind, err)
		}
		if got := opt.GetLR(); math.Abs(got-0.5) > 1e-15 {
			t.Errorf("New(%q).GetLR() = %g, want 0.5", kind, got)
		}
	}

	if _, err := optim.New("lbfgs", params, 0.5, 0); err == nil {
		t.Error("New(\"lbfgs\") expected an error")
	}
}
