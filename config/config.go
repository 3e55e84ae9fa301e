// Package config loads FCN model configuration from HCL files.
//
// A file holds one or more `model` blocks:
//
//	model "fcn8" {
//	  num_classes         = 3
//	  input_shape         = [256, 512, 3]
//	  learning_rate       = 0.01
//	  learning_rate_decay = 0.1
//	  weight_path         = "vgg16_notop.ot"
//	}
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/sugarme/gotch"

	"github.com/sugarme/fcn/fcn"
)

// ErrModelNotFound is returned when the requested model block is absent.
var ErrModelNotFound = errors.New("config: model not found")

// File is the decoded content of a config file.
type File struct {
	Models []*Model `hcl:"model,block"`

	path string
}

// Model is the HCL representation of fcn.Config.
type Model struct {
	Name              string  `hcl:"name,label"`
	NumClasses        int64   `hcl:"num_classes"`
	InputShape        []int64 `hcl:"input_shape"`
	LearningRate      float64 `hcl:"learning_rate"`
	LearningRateDecay float64 `hcl:"learning_rate_decay,optional"`
	WeightPath        string  `hcl:"weight_path,optional"`
	CheckpointPath    string  `hcl:"checkpoint_path,optional"`
	Backbone          string  `hcl:"backbone,optional"`
	FCChannels        int64   `hcl:"fc_channels,optional"`
	// Device is "cpu" (default) or "cuda". CUDA falls back to CPU when
	// unavailable.
	Device string `hcl:"device,optional"`

	dir string
}

// Load parses HCL config file at path.
func Load(path string) (*File, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var f File
	diags = gohcl.DecodeBody(hclFile.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	f.path = path
	dir := filepath.Dir(path)
	for _, m := range f.Models {
		m.dir = dir
	}

	return &f, nil
}

// Model returns the model block with given name. An empty name selects the
// only block of a single-model file.
func (f *File) Model(name string) (*Model, error) {
	if name == "" {
		if len(f.Models) == 1 {
			return f.Models[0], nil
		}
		return nil, fmt.Errorf("%w: %s holds %d models, name one of them", ErrModelNotFound, f.path, len(f.Models))
	}
	for _, m := range f.Models {
		if m.Name == name {
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w: %q in %s", ErrModelNotFound, name, f.path)
}

// ToFCN converts the model block to fcn.Config. Relative weight_path and
// checkpoint_path are resolved against the directory of the config file.
func (m *Model) ToFCN() (fcn.Config, error) {
	if len(m.InputShape) != 3 {
		return fcn.Config{}, fmt.Errorf("%w: model %q: input_shape must be [height, width, channels], got %v", fcn.ErrInvalidConfig, m.Name, m.InputShape)
	}

	cfg := fcn.Config{
		NumClasses:        m.NumClasses,
		InputShape:        [3]int64{m.InputShape[0], m.InputShape[1], m.InputShape[2]},
		LearningRate:      m.LearningRate,
		LearningRateDecay: m.LearningRateDecay,
		Backbone:          m.Backbone,
		FCChannels:        m.FCChannels,
	}

	cfg.WeightPath = m.resolve(m.WeightPath)
	cfg.CheckpointPath = m.resolve(m.CheckpointPath)

	switch m.Device {
	case "", "cpu":
		cfg.Device = gotch.CPU
	case "cuda":
		cfg.Device = gotch.NewCuda().CudaIfAvailable()
	default:
		return fcn.Config{}, fmt.Errorf("%w: model %q: unknown device %q", fcn.ErrInvalidConfig, m.Name, m.Device)
	}

	return cfg, cfg.Validate()
}

func (m *Model) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}
