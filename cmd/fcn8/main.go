package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sugarme/gotch"

	"github.com/sugarme/fcn/config"
	"github.com/sugarme/fcn/fcn"
)

// flag variables
var (
	ConfigPath string
	ModelName  string
	WeightPath string
	Checkpoint string
	Backbone   string
	Cuda       bool
	Verbose    bool
	task       string
)

// model hyperparameters
var (
	Classes    int64
	Height     int64
	Width      int64
	Channels   int64
	LR         float64
	Decay      float64
	FCChannels int64
)

// predict task
var (
	ImagePath   string
	OutPath     string
	PalettePath string
	ChartPath   string
)

func init() {
	flag.StringVar(&ConfigPath, "config", "", "specify HCL model config file. Overrides model flags.")
	flag.StringVar(&ModelName, "name", "", "specify model block name in config file")
	flag.StringVar(&WeightPath, "weights", "", "specify backbone weight '.ot' file (optional)")
	flag.StringVar(&Checkpoint, "checkpoint", "", "specify trained model '.ot' file. Overrides config file checkpoint_path.")
	flag.StringVar(&Backbone, "backbone", fcn.BackboneVGG16, "specify backbone: vgg16 or resnet34")
	flag.BoolVar(&Cuda, "cuda", false, "specify whether using CUDA or not.")
	flag.BoolVar(&Verbose, "v", false, "enable debug logging")
	flag.StringVar(&task, "task", "check", "specify task to run: check, summary or predict")

	flag.Int64Var(&Classes, "classes", 3, "specify number of classes")
	flag.Int64Var(&Height, "height", 256, "specify input height (multiple of 32)")
	flag.Int64Var(&Width, "width", 512, "specify input width (multiple of 32)")
	flag.Int64Var(&Channels, "channels", 3, "specify input channels")
	flag.Float64Var(&LR, "lr", 0.01, "specify initial learning rate")
	flag.Float64Var(&Decay, "decay", 0.1, "specify learning rate decay")
	flag.Int64Var(&FCChannels, "fc", 4096, "specify fc6/fc7 channels")

	flag.StringVar(&ImagePath, "image", "", "specify input image for predict task")
	flag.StringVar(&OutPath, "out", "mask.png", "specify output mask file for predict task")
	flag.StringVar(&PalettePath, "palette", "", "specify class palette CSV file (name,r,g,b)")
	flag.StringVar(&ChartPath, "chart", "", "specify class distribution chart file (optional)")
}

func main() {
	flag.Parse()

	level := slog.LevelInfo
	if Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := modelConfig()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Logger = logger

	switch task {
	case "check":
		err = runCheck(cfg)
	case "summary":
		err = runSummary(cfg)
	case "predict":
		err = runPredict(cfg)
	default:
		err = fmt.Errorf("Unknown 'task' name %q. Please specify valid 'task' flag to run.", task)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// modelConfig builds fcn.Config from config file if given, flags otherwise.
func modelConfig() (fcn.Config, error) {
	if ConfigPath != "" {
		f, err := config.Load(absPath(ConfigPath))
		if err != nil {
			return fcn.Config{}, err
		}
		m, err := f.Model(ModelName)
		if err != nil {
			return fcn.Config{}, err
		}
		cfg, err := m.ToFCN()
		if err != nil {
			return fcn.Config{}, err
		}
		if Checkpoint != "" {
			cfg.CheckpointPath = absPath(Checkpoint)
		}
		return cfg, nil
	}

	cfg := fcn.Config{
		NumClasses:        Classes,
		InputShape:        [3]int64{Height, Width, Channels},
		LearningRate:      LR,
		LearningRateDecay: Decay,
		Backbone:          Backbone,
		FCChannels:        FCChannels,
		Device:            gotch.CPU,
	}
	if WeightPath != "" {
		cfg.WeightPath = absPath(WeightPath)
	}
	if Checkpoint != "" {
		cfg.CheckpointPath = absPath(Checkpoint)
	}
	if Cuda {
		cfg.Device = gotch.NewCuda().CudaIfAvailable()
	}

	return cfg, nil
}

// helper to get absolute file path
func absPath(p string) string {
	fullpath, err := filepath.Abs(p)
	if err != nil {
		log.Fatal(err)
	}
	return fullpath
}
