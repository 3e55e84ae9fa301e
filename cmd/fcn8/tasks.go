package main

import (
	"fmt"
	"math"

	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/fcn"
	"github.com/sugarme/fcn/imageutil"
	"github.com/sugarme/fcn/report"
)

// runCheck builds the model and forwards a random batch through it.
func runCheck(cfg fcn.Config) error {
	m, err := fcn.Build(cfg)
	if err != nil {
		return err
	}
	fmt.Println("started")

	h, w, c := cfg.InputShape[0], cfg.InputShape[1], cfg.InputShape[2]
	x := ts.MustRand([]int64{1, c, h, w}, gotch.Float, gotch.CPU)
	out := m.Predict(x)
	x.MustDrop()

	sums := out.MustSum1([]int64{1}, false, gotch.Double, false)
	minSum, maxSum := math.Inf(1), math.Inf(-1)
	for _, s := range sums.Float64Values() {
		minSum = math.Min(minSum, s)
		maxSum = math.Max(maxSum, s)
	}
	sums.MustDrop()

	fmt.Printf("variables:\t %v\n", len(m.VarStore().Variables()))
	fmt.Printf("loaded:\t\t %v\n", len(m.LoadedLayers()))
	fmt.Printf("output shape:\t %v\n", out.MustSize())
	fmt.Printf("softmax sum:\t [%.6f, %.6f]\n", minSum, maxSum)
	out.MustDrop()

	return nil
}

// runSummary prints model variables sorted by name.
func runSummary(cfg fcn.Config) error {
	m, err := fcn.Build(cfg)
	if err != nil {
		return err
	}

	vars := m.VarStore().Variables()
	var total int64
	for _, n := range fcn.VarNames(m.VarStore()) {
		v := vars[n]
		size := v.MustSize()
		numel := int64(1)
		for _, d := range size {
			numel *= d
		}
		total += numel
		fmt.Printf("%-32v %v\n", n, size)
	}
	fmt.Printf("Total parameters: %v\n", total)

	return nil
}

// runPredict segments a single image and saves a colored mask.
func runPredict(cfg fcn.Config) error {
	if ImagePath == "" {
		return fmt.Errorf("predict task needs an '-image' file")
	}
	if cfg.CheckpointPath == "" {
		cfg.Logger.Warn("No '-checkpoint' given. Head layers are untrained.")
	}

	m, err := fcn.Build(cfg)
	if err != nil {
		return err
	}

	img, err := imageutil.ReadImage(absPath(ImagePath))
	if err != nil {
		return err
	}
	h, w, c := cfg.InputShape[0], cfg.InputShape[1], cfg.InputShape[2]
	x, err := imageutil.ToTensor(img, h, w, c)
	if err != nil {
		return err
	}

	prob := m.Predict(x)
	x.MustDrop()
	mask, err := imageutil.ArgmaxMask(prob.MustTo(gotch.CPU, true))
	if err != nil {
		return err
	}

	palette := imageutil.DefaultPalette(int(cfg.NumClasses))
	if PalettePath != "" {
		palette, err = imageutil.ReadPalette(absPath(PalettePath))
		if err != nil {
			return err
		}
		if palette.Len() < int(cfg.NumClasses) {
			return fmt.Errorf("palette has %d classes, model has %d", palette.Len(), cfg.NumClasses)
		}
	}

	b := img.Bounds()
	colored := imageutil.ResizeMask(imageutil.ColorMask(mask, palette), b.Dx(), b.Dy())
	overlay := imageutil.Overlay(img, colored, 128)
	if err := imageutil.SavePNG(overlay, absPath(OutPath)); err != nil {
		return err
	}
	fmt.Printf("Mask saved to %v\n", OutPath)

	if ChartPath != "" {
		counts := report.ClassCounts(mask, int(cfg.NumClasses))
		if err := report.SaveClassChart(counts, palette.Names, absPath(ChartPath)); err != nil {
			return err
		}
		fmt.Printf("Chart saved to %v\n", ChartPath)
	}

	return nil
}
