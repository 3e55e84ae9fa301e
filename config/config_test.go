package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"

	"github.com/sugarme/fcn/config"
	"github.com/sugarme/fcn/fcn"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
model "fcn8" {
  num_classes         = 3
  input_shape         = [256, 512, 3]
  learning_rate       = 0.01
  learning_rate_decay = 0.1
  weight_path         = "weights/vgg16.ot"
  checkpoint_path     = "/models/fcn8.ot"
}
`)

	f, err := config.Load(path)
	require.NoError(t, err)

	m, err := f.Model("")
	require.NoError(t, err)
	assert.Equal(t, "fcn8", m.Name)

	cfg, err := m.ToFCN()
	require.NoError(t, err)
	assert.Equal(t, int64(3), cfg.NumClasses)
	assert.Equal(t, [3]int64{256, 512, 3}, cfg.InputShape)
	assert.Equal(t, 0.01, cfg.LearningRate)
	assert.Equal(t, 0.1, cfg.LearningRateDecay)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "weights/vgg16.ot"), cfg.WeightPath)
	assert.Equal(t, "/models/fcn8.ot", cfg.CheckpointPath)
	assert.Equal(t, gotch.CPU, cfg.Device)
}

func TestLoad_NamedModel(t *testing.T) {
	path := writeFile(t, `
model "small" {
  num_classes   = 2
  input_shape   = [64, 64, 1]
  learning_rate = 0.001
  fc_channels   = 32
}

model "resnet" {
  num_classes   = 5
  input_shape   = [128, 128, 3]
  learning_rate = 0.001
  backbone      = "resnet34"
}
`)

	f, err := config.Load(path)
	require.NoError(t, err)

	_, err = f.Model("")
	assert.True(t, errors.Is(err, config.ErrModelNotFound))

	_, err = f.Model("missing")
	assert.True(t, errors.Is(err, config.ErrModelNotFound))

	m, err := f.Model("resnet")
	require.NoError(t, err)
	cfg, err := m.ToFCN()
	require.NoError(t, err)
	assert.Equal(t, fcn.BackboneResNet34, cfg.Backbone)
	assert.Empty(t, cfg.WeightPath)

	m, err = f.Model("small")
	require.NoError(t, err)
	cfg, err = m.ToFCN()
	require.NoError(t, err)
	assert.Equal(t, int64(32), cfg.FCChannels)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"short input shape", `model "m" {
  num_classes   = 3
  input_shape   = [256, 512]
  learning_rate = 0.01
}`},
		{"not divisible", `model "m" {
  num_classes   = 3
  input_shape   = [250, 512, 3]
  learning_rate = 0.01
}`},
		{"unknown device", `model "m" {
  num_classes   = 3
  input_shape   = [256, 512, 3]
  learning_rate = 0.01
  device        = "tpu"
}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := config.Load(writeFile(t, tt.content))
			require.NoError(t, err)
			m, err := f.Model("m")
			require.NoError(t, err)

			_, err = m.ToFCN()
			assert.True(t, errors.Is(err, fcn.ErrInvalidConfig))
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	_, err := config.Load(writeFile(t, `model "m" { num_classes = `))
	assert.Error(t, err)

	_, err = config.Load(writeFile(t, `model "m" { input_shape = [1, 2, 3] }`))
	assert.Error(t, err)
}

func TestLoad_ExampleFile(t *testing.T) {
	f, err := config.Load("../configs/fcn8.hcl")
	require.NoError(t, err)
	require.Len(t, f.Models, 2)

	m, err := f.Model("fcn8")
	require.NoError(t, err)
	cfg, err := m.ToFCN()
	require.NoError(t, err)

	def := fcn.DefaultConfig()
	assert.Equal(t, def.NumClasses, cfg.NumClasses)
	assert.Equal(t, def.InputShape, cfg.InputShape)
	assert.Equal(t, def.LearningRate, cfg.LearningRate)
	assert.Equal(t, def.LearningRateDecay, cfg.LearningRateDecay)
	assert.Empty(t, cfg.WeightPath)
}
