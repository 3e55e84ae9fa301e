package metric_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/metric"
)

func TestCategoricalCrossEntropy(t *testing.T) {
	// 1 image, 2 classes, 1x2 pixels
	target := ts.MustOfSlice([]float32{1, 0, 0, 1}).MustView([]int64{1, 2, 1, 2}, true)
	pred := ts.MustOfSlice([]float32{0.8, 0.4, 0.2, 0.6}).MustView([]int64{1, 2, 1, 2}, true)

	loss := metric.CategoricalCrossEntropy(target, pred)
	got := loss.Float64Values()[0]

	want := -(math.Log(0.8) + math.Log(0.6)) / 2
	assert.InDelta(t, want, got, 1e-5)
}

func TestCategoricalCrossEntropy_Clipped(t *testing.T) {
	target := ts.MustOfSlice([]float32{1, 0}).MustView([]int64{1, 2, 1, 1}, true)
	pred := ts.MustOfSlice([]float32{0, 1}).MustView([]int64{1, 2, 1, 1}, true)

	got := metric.CategoricalCrossEntropy(target, pred).Float64Values()[0]
	require.False(t, math.IsInf(got, 0))
	assert.InDelta(t, -math.Log(1e-7), got, 1e-2)
}

func TestCategoricalCrossEntropy_Perfect(t *testing.T) {
	target := ts.MustOnes([]int64{2, 1, 4, 4}, gotch.Float, gotch.CPU)

	got := metric.CategoricalCrossEntropy(target, target).Float64Values()[0]
	assert.InDelta(t, 0.0, got, 1e-5)
}
