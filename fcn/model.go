package fcn

import (
	"github.com/sugarme/gotch/nn"
	ts "github.com/sugarme/gotch/tensor"

	"github.com/sugarme/fcn/encoder"
)

// FCN8s is a fully convolutional network with 8x output stride.
// Ref: https://arxiv.org/abs/1411.4038
type FCN8s struct {
	encoder encoder.Encoder
	head    *Head
}

// NewFCN8s creates FCN8s on top of an already built encoder. The head
// variables are registered at path p.
func NewFCN8s(p *nn.Path, enc encoder.Encoder, fcChannels, classes int64) *FCN8s {
	ch := enc.OutChannels()
	k := len(ch)
	head := NewHead(p, ch[k-3], ch[k-2], ch[k-1], fcChannels, classes)

	return &FCN8s{encoder: enc, head: head}
}

// ForwardT implements ts.ModuleT for FCN8s.
// x: [B C H W] => [B classes H W] class probabilities.
func (n *FCN8s) ForwardT(x *ts.Tensor, train bool) *ts.Tensor {
	features := n.encoder.ForwardAll(x, train)
	k := len(features)
	pool3, pool4, pool5 := features[k-3], features[k-2], features[k-1]

	out := n.head.Forward(pool5, pool4, pool3, train)

	for _, f := range features {
		f.MustDrop()
	}

	return out
}
