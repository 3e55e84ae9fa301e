package metric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/metric"
)

func TestDiceCoeff(t *testing.T) {
	pslice := []float32{1, 0, 0, 1, 0, 0, 1, 0, 0}
	tslice := []float32{1, 0, 0, 1, 1, 0, 1, 0, 0}

	pred := ts.MustOfSlice(pslice).MustView([]int64{1, 3, 3}, true)
	target := ts.MustOfSlice(tslice).MustView([]int64{1, 3, 3}, true)

	// (2*3 + 1) / (4 + 3 + 1)
	dice := metric.DiceCoeff(target, pred)
	assert.InDelta(t, 7.0/8.0, dice, 1e-6)
}

func TestDiceCoeff_Identical(t *testing.T) {
	y := ts.MustRand([]int64{2, 3, 8, 8}, gotch.Float, gotch.CPU)
	// normalize to a one-hot-like map so that sum(y*y) ~ sum(y)
	oneHot := y.MustGt(ts.FloatScalar(0.5), false).MustTotype(gotch.Float, true)

	dice := metric.DiceCoeff(oneHot, oneHot)
	assert.InDelta(t, 1.0, dice, 1e-6)
}

func TestDiceCoeff_Zeros(t *testing.T) {
	zeros := ts.MustZeros([]int64{1, 3, 4, 4}, gotch.Float, gotch.CPU)

	assert.Equal(t, 1.0, metric.DiceCoeff(zeros, zeros))
}

func TestDiceCoeff_Complement(t *testing.T) {
	vals := []float32{1, 0, 1, 1, 0, 0, 1, 0}
	y := ts.MustOfSlice(vals).MustView([]int64{1, 2, 2, 2}, true)
	inv := y.MustMul1(ts.FloatScalar(-1), false).MustAdd1(ts.FloatScalar(1), true)

	same := metric.DiceCoeff(y, y)
	diff := metric.DiceCoeff(y, inv)
	assert.Less(t, diff, same)
	// (0 + 1) / (4 + 4 + 1)
	assert.InDelta(t, 1.0/9.0, diff, 1e-6)
}

func TestIoU(t *testing.T) {
	pslice := []float32{1, 0, 0, 1, 0, 0, 1, 0, 0}
	tslice := []float32{1, 0, 0, 1, 1, 0, 1, 0, 0}

	pred := ts.MustOfSlice(pslice).MustView([]int64{1, 3, 3}, true)
	target := ts.MustOfSlice(tslice).MustView([]int64{1, 3, 3}, true)

	iou := metric.IoU(pred, target)
	assert.InDelta(t, 0.75, iou, 1e-6)
}

func TestJaccardIndex(t *testing.T) {
	pslice := []int64{1, 0, 0, 1, 0, 0, 1, 0, 0}
	tslice := []int64{1, 0, 0, 1, 1, 0, 1, 0, 0}

	pred := ts.MustOfSlice(pslice).MustView([]int64{1, 3, 3}, true)
	target := ts.MustOfSlice(tslice).MustView([]int64{1, 3, 3}, true)

	// class 0: 5/6, class 1: 3/4
	iou := metric.JaccardIndex(pred, target, 2)
	assert.InDelta(t, (5.0/6.0+0.75)/2, iou, 1e-6)
}
