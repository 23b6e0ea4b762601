// Copyright 2025 The ivimnet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"os"
	"sort"
	"strings"

	"github.com/ivimnet/ivimnet/internal/nn"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"
	"gonum.org/v1/gonum/mat"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//   - StateDict: Export parameters for serialization
//   - LoadStateDict: Import parameters from serialization
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(8, 8, backend, src),
//	    nn.NewELU(1, backend),
//	    nn.NewLinear(8, 3, backend, src),
//	)
type Module = nn.Module

// Stateful is anything that exports and imports a state dictionary. Every
// Module is Stateful, and so are models that wrap one.
type Stateful interface {
	StateDict() map[string]*mat.Dense
	LoadStateDict(stateDict map[string]*mat.Dense) error
}

// Save writes a module's state dictionary to a NumPy .npz archive, one
// array per parameter.
//
// Example:
//
//	model := nn.NewLinear(8, 3, backend, src)
//	err := nn.Save(model, "estimator.npz")
func Save(module Stateful, path string) error {
	stateDict := module.StateDict()
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %q", path)
	}
	w := npz.NewWriter(f)
	for _, name := range names {
		if err := w.Write(name, stateDict[name]); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "writing parameter %q", name)
		}
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "finishing %q", path)
	}
	return errors.Wrapf(f.Close(), "closing %q", path)
}

// Load reads a state dictionary written by Save into module.
//
// Example:
//
//	model := nn.NewLinear(8, 3, backend, src)
//	err := nn.Load("estimator.npz", model)
func Load(path string, module Stateful) error {
	r, err := npz.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %q", path)
	}
	defer func() {
		_ = r.Close()
	}()

	stateDict := make(map[string]*mat.Dense)
	for _, key := range r.Keys() {
		var m mat.Dense
		if err := r.Read(key, &m); err != nil {
			return errors.Wrapf(err, "reading %q", key)
		}
		stateDict[strings.TrimSuffix(key, ".npy")] = &m
	}
	return module.LoadStateDict(stateDict)
}
