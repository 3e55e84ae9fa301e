package fcn

import (
	"fmt"
	"log/slog"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/encoder"
	"github.com/sugarme/fcn/metric"
)

// Model is a compiled FCN-8s: the network, its variables, an Adam optimizer
// with time-based learning rate decay, categorical cross-entropy loss and
// the dice coefficient metric.
type Model struct {
	cfg    Config
	vs     *nn.VarStore
	net    *FCN8s
	opt    *nn.Optimizer
	step   int64
	loaded []string
	logger *slog.Logger
}

// Build builds and compiles a FCN-8s model.
//
// The backbone is created first. If cfg.WeightPath is set, weights are
// loaded while the var store holds backbone variables only, so that file
// entries can only land on backbone layers. Then the head is added and the
// optimizer is built over all variables. A cfg.CheckpointPath is restored
// last and must match every variable of the model.
func Build(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	logger := cfg.Logger.With("backbone", cfg.Backbone, "classes", cfg.NumClasses)

	vs := nn.NewVarStore(cfg.Device)
	root := vs.Root()

	var enc encoder.Encoder
	switch cfg.Backbone {
	case BackboneResNet34:
		enc = encoder.NewResNet34Encoder(root)
	default:
		enc = encoder.NewVGG16Encoder(root, cfg.InputShape[2])
	}
	logger.Debug("Backbone built.", "variables", len(vs.Variables()))

	var loaded []string
	if cfg.WeightPath != "" {
		var err error
		loaded, err = loadWeights(vs, cfg.WeightPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Backbone weights loaded.", "path", cfg.WeightPath, "loaded", len(loaded), "variables", len(vs.Variables()))
	}

	net := NewFCN8s(root, enc, cfg.FCChannels, cfg.NumClasses)
	if err := checkLayerNames(vs); err != nil {
		return nil, err
	}

	if cfg.CheckpointPath != "" {
		if err := loadCheckpoint(vs, cfg.CheckpointPath); err != nil {
			return nil, err
		}
		logger.Info("Checkpoint loaded.", "path", cfg.CheckpointPath)
	}

	opt, err := nn.DefaultAdamConfig().Build(vs, cfg.LearningRate)
	if err != nil {
		return nil, fmt.Errorf("fcn: build optimizer: %w", err)
	}
	logger.Info("Model built.", "input_shape", cfg.InputShape, "variables", len(vs.Variables()))

	return &Model{
		cfg:    cfg,
		vs:     vs,
		net:    net,
		opt:    opt,
		loaded: loaded,
		logger: logger,
	}, nil
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config {
	return m.cfg
}

// VarStore returns the model variables.
func (m *Model) VarStore() *nn.VarStore {
	return m.vs
}

// LoadedLayers returns names of variables filled from the weight file.
func (m *Model) LoadedLayers() []string {
	return append([]string(nil), m.loaded...)
}

// LearningRate returns the rate for the next step:
// lr0 / (1 + decay * step)
func (m *Model) LearningRate() float64 {
	return m.cfg.LearningRate / (1 + m.cfg.LearningRateDecay*float64(m.step))
}

// ForwardT implements ts.ModuleT for Model.
func (m *Model) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return m.net.ForwardT(x, train)
}

// Predict runs inference on x in shape [B C H W] and returns class
// probabilities in shape [B classes H W].
func (m *Model) Predict(x *ts.Tensor) *ts.Tensor {
	var out *ts.Tensor
	ts.NoGrad(func() {
		in := x.MustTo(m.cfg.Device, false)
		out = m.net.ForwardT(in, false)
		in.MustDrop()
	})

	return out
}

// TrainStep runs one optimization step on a batch. y holds one-hot targets
// in shape [B classes H W]. It returns batch loss and dice coefficient.
func (m *Model) TrainStep(x, y *ts.Tensor) (loss, dice float64) {
	m.opt.SetLR(m.LearningRate())

	in := x.MustTo(m.cfg.Device, false)
	target := y.MustTo(m.cfg.Device, false)
	pred := m.net.ForwardT(in, true)
	in.MustDrop()

	l := metric.CategoricalCrossEntropy(target, pred)
	m.opt.BackwardStep(l)
	m.step++

	loss = l.Float64Values()[0]
	dice = metric.DiceCoeff(target, pred)

	l.MustDrop()
	pred.MustDrop()
	target.MustDrop()

	m.logger.Debug("Train step.", "step", m.step, "loss", loss, "dice", dice)

	return loss, dice
}

// Evaluate computes loss and dice coefficient of a batch without updating
// variables.
func (m *Model) Evaluate(x, y *ts.Tensor) (loss, dice float64) {
	ts.NoGrad(func() {
		in := x.MustTo(m.cfg.Device, false)
		target := y.MustTo(m.cfg.Device, false)
		pred := m.net.ForwardT(in, false)
		in.MustDrop()

		l := metric.CategoricalCrossEntropy(target, pred)
		loss = l.Float64Values()[0]
		dice = metric.DiceCoeff(target, pred)

		l.MustDrop()
		pred.MustDrop()
		target.MustDrop()
	})

	return loss, dice
}

// Save saves all model variables to file.
func (m *Model) Save(path string) error {
	return m.vs.Save(path)
}

// Load restores all model variables from a file written by Save. The file
// must hold every variable of the model with the same shape.
func (m *Model) Load(path string) error {
	if err := loadCheckpoint(m.vs, path); err != nil {
		return err
	}
	m.logger.Info("Checkpoint loaded.", "path", path)

	return nil
}
