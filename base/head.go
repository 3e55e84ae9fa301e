package base

import "github.com/sugarme/gotch/nn"

// NewScore creates a 1x1 linear classifier (nn.SequentialT) projecting cIn
// channels onto `classes` channels followed by a BatchNorm. No activation.
func NewScore(p *nn.Path, name string, cIn, classes int64) *nn.SequentialT {
	seq := nn.SeqT()
	seq.Add(Conv2d(p.Sub(name), cIn, classes, 1, 0, 1))
	seq.Add(BatchNorm(p.Sub(name+"_bn"), classes))

	return seq
}
