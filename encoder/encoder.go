package encoder

import (
	ts "github.com/sugarme/gotch/tensor"
)

// Encoder is encoder interface for a image segmentation model.
//
// ForwardAll returns one feature map per downsampling stage, finest first.
// The last three maps must be at 1/8, 1/16 and 1/32 of the input
// resolution. OutChannels reports the channel depth of each map in the same
// order.
type Encoder interface {
	ForwardAll(x *ts.Tensor, train bool) []*ts.Tensor
	OutChannels() []int64
}
