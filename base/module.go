package base

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"
)

// Identity is a nn.Module placeholder.
// It forwards a shallow clone of the input, which stays on the autograd
// graph and can be dropped independently of x.
type Identity struct{}

// Forward implement nn.Module for Identity struct
func (i *Identity) Forward(x *ts.Tensor) *ts.Tensor {
	return x.MustShallowClone()
}

// Forward implement nn.ModuleT for Identity struct.
func (i *Identity) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	return x.MustShallowClone()
}

// NewIdentity creates a new Identity struct.
func NewIdentity() *Identity {
	return &Identity{}
}

// Conv2d creates Conv2D module.
func Conv2d(p *nn.Path, cIn, cOut, ksize, padding, stride int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Stride = []int64{stride, stride}
	config.Padding = []int64{padding, padding}

	return nn.NewConv2D(p, cIn, cOut, ksize, config)
}

// Conv2dNoBias creates Conv2D with no bias.
func Conv2dNoBias(p *nn.Path, cIn, cOut, ksize, padding, stride int64) *nn.Conv2D {
	config := nn.DefaultConv2DConfig()
	config.Bias = false
	config.Stride = []int64{stride, stride}
	config.Padding = []int64{padding, padding}

	return nn.NewConv2D(p, cIn, cOut, ksize, config)
}

// BatchNorm creates a BatchNorm2D initialized and configured like a Keras
// BatchNormalization layer: gamma=1, beta=0, epsilon 0.001 and momentum
// 0.01 (torch convention, i.e. 0.99 moving average).
func BatchNorm(p *nn.Path, c int64) *nn.BatchNorm {
	config := nn.DefaultBatchNormConfig()
	config.Eps = 0.001
	config.Momentum = 0.01
	config.WsInit = nn.NewConstInit(1.0)

	return nn.BatchNorm2D(p, c, config)
}

// ConvBNRelu creates a SequentialT composing of a biased Conv2D, a
// BatchNorm and a ReLU activation.
//
// Variables are registered at `p/name` and `p/name_bn` so that pretrained
// weights can be matched by layer name.
func ConvBNRelu(p *nn.Path, name string, cIn, cOut, ksize, padding int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(Conv2d(p.Sub(name), cIn, cOut, ksize, padding, 1))
	seq.Add(BatchNorm(p.Sub(name+"_bn"), cOut))
	seq.AddFn(nn.NewFunc(func(xs *ts.Tensor) *ts.Tensor {
		return xs.MustRelu(false)
	}))

	return seq
}

// MaxPool2x2 halves spatial dimensions: [B C H W] => [B C H/2 W/2]
func MaxPool2x2() nn.Func {
	return nn.NewFunc(func(x *ts.Tensor) *ts.Tensor {
		// ksize = 2; stride=2; padding=0; dilation=1; ceil=false
		return x.MustMaxPool2d([]int64{2, 2}, []int64{2, 2}, []int64{0, 0}, []int64{1, 1}, false, false)
	})
}
