package encoder

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/base"
)

// vgg16Config lists number of conv layers and channel depth per block.
var vgg16Config = []struct {
	convs int
	cOut  int64
}{
	{2, 64},
	{2, 128},
	{3, 256},
	{3, 512},
	{3, 512},
}

// VGG16Encoder is a VGG16 feature extractor with a BatchNorm after every
// convolution. Each of its 5 blocks ends with a 2x2 max-pool.
type VGG16Encoder struct {
	blocks   []*nn.SequentialT
	channels []int64
}

// NewVGG16Encoder creates VGG16Encoder for input with cIn channels.
//
// Conv layers are named `blockN_convM` (and `blockN_convM_bn`) at path p,
// the same names Keras uses for the VGG16 notop weights.
func NewVGG16Encoder(p *nn.Path, cIn int64) *VGG16Encoder {
	var (
		blocks   []*nn.SequentialT
		channels []int64
	)
	c := cIn
	for i, cfg := range vgg16Config {
		block := nn.SeqT()
		for j := 0; j < cfg.convs; j++ {
			name := fmt.Sprintf("block%d_conv%d", i+1, j+1)
			block.Add(base.ConvBNRelu(p, name, c, cfg.cOut, 3, 1))
			c = cfg.cOut
		}
		block.AddFn(base.MaxPool2x2())
		blocks = append(blocks, block)
		channels = append(channels, cfg.cOut)
	}

	return &VGG16Encoder{blocks: blocks, channels: channels}
}

// ForwardAll implements Encoder interface for VGG16Encoder.
// Shapes: [B 64 H/2 W/2] ... [B 512 H/32 W/32]
func (e *VGG16Encoder) ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor {
	features := make([]*ts.Tensor, 0, len(e.blocks))
	in := x
	for _, block := range e.blocks {
		out := block.ForwardT(in, train)
		features = append(features, out)
		in = out
	}

	return features
}

// OutChannels implements Encoder interface for VGG16Encoder.
func (e *VGG16Encoder) OutChannels() []int64 {
	return append([]int64(nil), e.channels...)
}

// Forward returns pooled outputs of block 4 (1/16, 512 ch), block 3
// (1/8, 256 ch) and block 5 (1/32, 512 ch).
func (e *VGG16Encoder) Forward(x *ts.Tensor, train bool) (block4Out, block3Out, out *ts.Tensor) {
	features := e.ForwardAll(x, train)
	features[0].MustDrop()
	features[1].MustDrop()

	return features[3], features[2], features[4]
}
