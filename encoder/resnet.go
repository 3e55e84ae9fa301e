package encoder

import (
	"fmt"

	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/base"
)

// resnet34Config lists output depth, first block stride and block count of
// each residual stage.
var resnet34Config = []struct {
	cOut   int64
	stride int64
	blocks int
}{
	{64, 1, 3},
	{128, 2, 4},
	{256, 2, 6},
	{512, 2, 3},
}

const resnetStemChannels int64 = 64

// ResNetEncoder is a ResNet34 feature extractor. Its layer2, layer3 and
// layer4 outputs are at 1/8, 1/16 and 1/32 of the input, so it can replace
// VGG16Encoder under an FCN head.
//
// Variables follow torchvision naming: `conv1`, `bn1` at the root and
// `layerN.I.*` per residual block.
type ResNetEncoder struct {
	stem     *nn.SequentialT
	stages   []*nn.SequentialT
	channels []int64
}

// NewResNet34Encoder creates ResNet34 encoder. Input must have 3 (RGB) channels.
func NewResNet34Encoder(p *nn.Path) *ResNetEncoder {
	channels := []int64{3, resnetStemChannels}
	var stages []*nn.SequentialT
	c := resnetStemChannels
	for i, cfg := range resnet34Config {
		sp := p.Sub(fmt.Sprintf("layer%d", i+1))
		stage := nn.SeqT()
		stride := cfg.stride
		for j := 0; j < cfg.blocks; j++ {
			stage.Add(newResidualBlock(sp.Sub(fmt.Sprint(j)), c, cfg.cOut, stride))
			c, stride = cfg.cOut, 1
		}
		stages = append(stages, stage)
		channels = append(channels, cfg.cOut)
	}

	return &ResNetEncoder{
		stem:     resnetStem(p),
		stages:   stages,
		channels: channels,
	}
}

// ForwardAll implements Encoder interface for ResNetEncoder.
// Shapes: normalized input, stem [B 64 H/4 W/4], then one map per stage
// down to [B 512 H/32 W/32].
func (e *ResNetEncoder) ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor {
	xn := rgbNormalize(x)
	features := []*ts.Tensor{xn}
	in := e.stem.ForwardT(xn, train)
	features = append(features, in)
	for _, stage := range e.stages {
		in = stage.ForwardT(in, train)
		features = append(features, in)
	}

	return features
}

// OutChannels implements Encoder interface for ResNetEncoder.
func (e *ResNetEncoder) OutChannels() []int64 {
	return append([]int64(nil), e.channels...)
}

// rgbNormalize standardizes x with ImageNet channel statistics.
func rgbNormalize(x *ts.Tensor) *ts.Tensor {
	mean := ts.MustOfSlice([]float32{0.485, 0.456, 0.406}).MustView([]int64{1, 3, 1, 1}, true)
	sd := ts.MustOfSlice([]float32{0.229, 0.224, 0.225}).MustView([]int64{1, 3, 1, 1}, true)

	n := x.MustSub(mean, false).MustDiv(sd, true)
	mean.MustDrop()
	sd.MustDrop()

	return n
}

// resnetStem is the 7x7/2 convolution followed by a 3x3/2 max-pool: 1/4 of
// the input resolution.
func resnetStem(p *nn.Path) *nn.SequentialT {
	stem := nn.SeqT()
	stem.Add(base.Conv2dNoBias(p.Sub("conv1"), 3, resnetStemChannels, 7, 3, 2))
	stem.Add(nn.BatchNorm2D(p.Sub("bn1"), resnetStemChannels, nn.DefaultBatchNormConfig()))
	stem.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	}))
	stem.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustMaxPool2d([]int64{3, 3}, []int64{2, 2}, []int64{1, 1}, []int64{1, 1}, false, false)
	}))

	return stem
}

// residualBlock is the two 3x3 convolution block of ResNet18/34.
type residualBlock struct {
	conv1, conv2 *nn.Conv2D
	bn1, bn2     *nn.BatchNorm
	shortcut     ts.ModuleT
}

func newResidualBlock(p *nn.Path, cIn, cOut, stride int64) *residualBlock {
	return &residualBlock{
		conv1:    base.Conv2dNoBias(p.Sub("conv1"), cIn, cOut, 3, 1, stride),
		bn1:      nn.BatchNorm2D(p.Sub("bn1"), cOut, nn.DefaultBatchNormConfig()),
		conv2:    base.Conv2dNoBias(p.Sub("conv2"), cOut, cOut, 3, 1, 1),
		bn2:      nn.BatchNorm2D(p.Sub("bn2"), cOut, nn.DefaultBatchNormConfig()),
		shortcut: newShortcut(p.Sub("downsample"), cIn, cOut, stride),
	}
}

// newShortcut projects x with a strided 1x1 conv when the block changes
// resolution or depth. Otherwise x passes through unchanged.
func newShortcut(p *nn.Path, cIn, cOut, stride int64) ts.ModuleT {
	if stride == 1 && cIn == cOut {
		return base.NewIdentity()
	}
	seq := nn.SeqT()
	seq.Add(base.Conv2dNoBias(p.Sub("0"), cIn, cOut, 1, 0, stride))
	seq.Add(nn.BatchNorm2D(p.Sub("1"), cOut, nn.DefaultBatchNormConfig()))

	return seq
}

// ForwardT implements ts.ModuleT for residualBlock.
func (b *residualBlock) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	c1 := b.conv1.ForwardT(x, train)
	h := b.bn1.ForwardT(c1, train).MustRelu(true)
	c1.MustDrop()
	c2 := b.conv2.ForwardT(h, train)
	h.MustDrop()
	residual := b.bn2.ForwardT(c2, train)
	c2.MustDrop()

	sum := b.shortcut.ForwardT(x, train).MustAdd(residual, true)
	residual.MustDrop()

	return sum.MustRelu(true)
}
