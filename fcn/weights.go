package fcn

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// VarNames returns variable names of vs sorted by name.
func VarNames(vs *nn.VarStore) []string {
	vars := vs.Variables()
	names := make([]string, 0, len(vars))
	for n := range vars {
		names = append(names, n)
	}
	sort.Strings(names)

	return names
}

// loadWeights copies tensors from weight file at path into variables of vs
// that have the same name. Names present on only one side are skipped.
// It returns names of loaded variables, sorted.
//
// A tensor whose shape differs from its same-named variable fails the
// whole load before any variable is modified.
func loadWeights(vs *nn.VarStore, path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeightFile, err)
	}

	named, err := ts.LoadMultiWithDevice(path, vs.Device())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeightFile, err)
	}
	defer func() {
		for _, nt := range named {
			nt.Tensor.MustDrop()
		}
	}()

	vars := vs.Variables()
	var matched []ts.NamedTensor
	for _, nt := range named {
		v, ok := vars[nt.Name]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(v.MustSize(), nt.Tensor.MustSize()) {
			return nil, fmt.Errorf("%w: layer %q has shape %v, file has %v", ErrWeightFile, nt.Name, v.MustSize(), nt.Tensor.MustSize())
		}
		matched = append(matched, nt)
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoMatchingLayers, path)
	}

	loaded := make([]string, 0, len(matched))
	ts.NoGrad(func() {
		for _, nt := range matched {
			v := vars[nt.Name]
			v.Copy_(nt.Tensor)
			loaded = append(loaded, nt.Name)
		}
	})
	sort.Strings(loaded)

	return loaded, nil
}

// loadCheckpoint strictly restores every variable of vs from a file written
// by Model.Save. Missing names and shape differences are errors.
func loadCheckpoint(vs *nn.VarStore, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %v", ErrWeightFile, err)
	}
	if err := vs.Load(path); err != nil {
		return fmt.Errorf("%w: %v", ErrWeightFile, err)
	}

	return nil
}

// checkLayerNames reports variables that were renamed by the var store
// because their name was already taken.
func checkLayerNames(vs *nn.VarStore) error {
	var dup []string
	for _, n := range VarNames(vs) {
		if strings.Contains(n, "__") {
			dup = append(dup, n)
		}
	}
	if len(dup) > 0 {
		return fmt.Errorf("%w: %v", ErrLayerNameCollision, dup)
	}

	return nil
}
