package nn

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input, creating a
// sequential pipeline of transformations.
//
// Example:
//
//	model := nn.NewSequential(
//	    nn.NewLinear(8, 8, backend, src),
//	    nn.NewELU(1, backend),
//	    nn.NewLinear(8, 3, backend, src),
//	    nn.NewAbs(backend),
//	)
//
//	output := model.Forward(input)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
//
// Returns the output of the last module. An empty Sequential returns its input.
func (s *Sequential) Forward(input *mat.Dense) *mat.Dense {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// StateDict returns copies of all parameters.
//
// Parameters are prefixed with their module index (e.g., "0.weight", "0.bias", "2.weight")
// to avoid name collisions.
func (s *Sequential) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	for i, module := range s.modules {
		for name, m := range module.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = m
		}
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary.
//
// Parameters should be prefixed with their module index (e.g., "0.weight", "0.bias").
func (s *Sequential) LoadStateDict(stateDict map[string]*mat.Dense) error {
	for i, module := range s.modules {
		prefix := fmt.Sprintf("%d.", i)
		moduleStateDict := make(map[string]*mat.Dense)
		for key, m := range stateDict {
			if name, ok := strings.CutPrefix(key, prefix); ok && name != "" {
				moduleStateDict[name] = m
			}
		}

		if len(module.Parameters()) == 0 {
			continue
		}
		if err := module.LoadStateDict(moduleStateDict); err != nil {
			return errors.Wrapf(err, "failed to load module %d", i)
		}
	}
	return nil
}
