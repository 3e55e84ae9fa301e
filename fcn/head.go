package fcn

import (
	"github.com/sugarme/gotch"
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/base"
)

// Head is the FCN-8s decoder. It scores the coarsest backbone features,
// fuses them with scores of the 1/16 and 1/8 skip features and resizes the
// result back to input resolution.
type Head struct {
	fc6        *nn.SequentialT
	fc7        *nn.SequentialT
	scoreFr    *nn.SequentialT
	scorePool4 *nn.SequentialT
	scorePool3 *nn.SequentialT
}

// NewHead creates Head.
//
// pool3C, pool4C and pool5C are channel depths of the 1/8, 1/16 and 1/32
// backbone features. fcChannels is depth of the fc6 and fc7 convolutions.
func NewHead(p *nn.Path, pool3C, pool4C, pool5C, fcChannels, classes int64) *Head {
	return &Head{
		fc6:        fcLayer(p, "fc6", pool5C, fcChannels, 7, 3),
		fc7:        fcLayer(p, "fc7", fcChannels, fcChannels, 1, 0),
		scoreFr:    base.NewScore(p, "score_fr", fcChannels, classes),
		scorePool4: base.NewScore(p, "score_pool4", pool4C, classes),
		scorePool3: base.NewScore(p, "score_pool3", pool3C, classes),
	}
}

// fcLayer is a convolutionalized fully connected layer:
// conv -> ReLU -> BN -> ReLU
func fcLayer(p *nn.Path, name string, cIn, cOut, ksize, padding int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(base.Conv2d(p.Sub(name), cIn, cOut, ksize, padding, 1))
	seq.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	}))
	seq.Add(base.BatchNorm(p.Sub(name+"_bn"), cOut))
	seq.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	}))

	return seq
}

// Forward returns per-pixel class probabilities in shape
// [B classes 32*H5 32*W5] where H5, W5 are spatial dims of pool5.
func (h *Head) Forward(pool5, pool4, pool3 *ts.Tensor, train bool) *ts.Tensor {
	f6 := h.fc6.ForwardT(pool5, train)
	f7 := h.fc7.ForwardT(f6, train)
	f6.MustDrop()
	score := h.scoreFr.ForwardT(f7, train) // [B K H/32 W/32]
	f7.MustDrop()

	s4 := h.scorePool4.ForwardT(pool4, train) // [B K H/16 W/16]
	s3 := h.scorePool3.ForwardT(pool3, train) // [B K H/8  W/8 ]

	up2 := resize(score, 2)
	score.MustDrop()
	fuse4 := up2.MustAdd(s4, true).MustRelu(true)
	s4.MustDrop()

	up4 := resize(fuse4, 2)
	fuse4.MustDrop()
	fuse3 := up4.MustAdd(s3, true).MustRelu(true)
	s3.MustDrop()

	up8 := resize(fuse3, 8) // [B K H W]
	fuse3.MustDrop()

	return up8.MustSoftmax(1, gotch.Float, true)
}

// resize upsamples x bilinearly to `factor` times its own spatial size.
// x should be in shape: [BatchSize CHW]
func resize(x *ts.Tensor, factor int64) *ts.Tensor {
	size := x.MustSize()
	outSize := []int64{size[2] * factor, size[3] * factor}
	return x.MustUpsampleBilinear2d(outSize, false, nil, nil, false)
}
