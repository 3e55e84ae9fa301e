package fcn

import (
	"fmt"
	"log/slog"

	"github.com/sugarme/gotch"
)

// Backbone names.
const (
	BackboneVGG16    = "vgg16"
	BackboneResNet34 = "resnet34"
)

const (
	// outputStride is the ratio between input resolution and the coarsest
	// backbone feature map. The head restores it with 2x, 2x and 8x resizes.
	outputStride = 32

	defaultFCChannels int64 = 4096
)

// Config holds hyperparameters to build a FCN-8s model.
type Config struct {
	NumClasses int64
	// InputShape is (height, width, channels).
	InputShape        [3]int64
	LearningRate      float64
	LearningRateDecay float64
	// WeightPath optionally points to a pretrained backbone weight file.
	// Layers are matched by name.
	WeightPath string
	// CheckpointPath optionally points to a full model file written by
	// Model.Save. It is loaded strictly once the head exists.
	CheckpointPath string
	// Backbone is one of BackboneVGG16 (default) or BackboneResNet34.
	Backbone string
	// FCChannels is depth of the fc6/fc7 convolutions. Default 4096.
	FCChannels int64
	Device     gotch.Device
	Logger     *slog.Logger
}

// DefaultConfig returns the smoke test configuration: 3 classes, 256x512 RGB
// input, learning rate 0.01 and decay 0.1.
func DefaultConfig() Config {
	return Config{
		NumClasses:        3,
		InputShape:        [3]int64{256, 512, 3},
		LearningRate:      0.01,
		LearningRateDecay: 0.1,
		Backbone:          BackboneVGG16,
		FCChannels:        defaultFCChannels,
		Device:            gotch.CPU,
	}
}

func (c Config) withDefaults() Config {
	if c.Backbone == "" {
		c.Backbone = BackboneVGG16
	}
	if c.FCChannels == 0 {
		c.FCChannels = defaultFCChannels
	}
	if c.Device.Name == "" {
		c.Device = gotch.CPU
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validate checks that configuration is consistent with the fixed layer
// dimensions of the network.
func (c Config) Validate() error {
	h, w, ch := c.InputShape[0], c.InputShape[1], c.InputShape[2]
	switch {
	case c.NumClasses <= 0:
		return fmt.Errorf("%w: num_classes must be positive, got %d", ErrInvalidConfig, c.NumClasses)
	case h <= 0 || w <= 0 || ch <= 0:
		return fmt.Errorf("%w: input shape must be positive, got %v", ErrInvalidConfig, c.InputShape)
	case h%outputStride != 0 || w%outputStride != 0:
		return fmt.Errorf("%w: input height and width must be divisible by %d, got %dx%d", ErrInvalidConfig, outputStride, h, w)
	case c.LearningRate <= 0:
		return fmt.Errorf("%w: learning rate must be positive, got %v", ErrInvalidConfig, c.LearningRate)
	case c.LearningRateDecay < 0:
		return fmt.Errorf("%w: learning rate decay must not be negative, got %v", ErrInvalidConfig, c.LearningRateDecay)
	case c.FCChannels < 0:
		return fmt.Errorf("%w: fc channels must not be negative, got %d", ErrInvalidConfig, c.FCChannels)
	}

	switch c.Backbone {
	case "", BackboneVGG16:
	case BackboneResNet34:
		if ch != 3 {
			return fmt.Errorf("%w: %s backbone needs 3 input channels, got %d", ErrInvalidConfig, BackboneResNet34, ch)
		}
	default:
		return fmt.Errorf("%w: unknown backbone %q", ErrInvalidConfig, c.Backbone)
	}

	return nil
}
