package fcn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/fcn"
)

func TestHead_OutputChannels(t *testing.T) {
	for _, classes := range []int64{1, 2, 7, 21} {
		vs := nn.NewVarStore(gotch.CPU)
		head := fcn.NewHead(vs.Root(), 256, 512, 512, 8, classes)

		pool3 := ts.MustRand([]int64{1, 256, 8, 12}, gotch.Float, gotch.CPU)
		pool4 := ts.MustRand([]int64{1, 512, 4, 6}, gotch.Float, gotch.CPU)
		pool5 := ts.MustRand([]int64{1, 512, 2, 3}, gotch.Float, gotch.CPU)

		var out *ts.Tensor
		ts.NoGrad(func() {
			out = head.Forward(pool5, pool4, pool3, false)
		})
		// 8x the pool3 resolution, i.e. 32x pool5.
		assert.Equal(t, []int64{1, classes, 64, 96}, out.MustSize())

		out.MustDrop()
		pool3.MustDrop()
		pool4.MustDrop()
		pool5.MustDrop()
	}
}

func TestHead_LayerNames(t *testing.T) {
	vs := nn.NewVarStore(gotch.CPU)
	fcn.NewHead(vs.Root(), 256, 512, 512, 8, 3)

	names := fcn.VarNames(vs)
	for _, want := range []string{
		"fc6.weight", "fc6_bn.weight", "fc7.weight", "fc7_bn.weight",
		"score_fr.weight", "score_fr_bn.running_mean",
		"score_pool4.weight", "score_pool3.bias",
	} {
		assert.Contains(t, names, want)
	}
}
