// Package metric provides segmentation metrics and losses on gotch tensors.
package metric

import (
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

// smooth is added to both numerator and denominator of the dice
// coefficient so that two all-zero maps score 1.
const smooth = 1.0

// DiceCoeffTensor computes the smoothed dice coefficient
//
//	(2*sum(yTrue*yPred) + 1) / (sum(yTrue) + sum(yPred) + 1)
//
// over all elements of the two tensors. The result is a scalar tensor that
// stays on the autograd graph of yPred.
func DiceCoeffTensor(yTrue, yPred *ts.Tensor) *ts.Tensor {
	mul := yTrue.MustMul(yPred, false)
	intersection := mul.MustSum(gotch.Double, true)
	numerator := intersection.MustMul1(ts.FloatScalar(2.0), true).MustAdd1(ts.FloatScalar(smooth), true)

	tSum := yTrue.MustSum(gotch.Double, false)
	pSum := yPred.MustSum(gotch.Double, false)
	denominator := tSum.MustAdd(pSum, true).MustAdd1(ts.FloatScalar(smooth), true)
	pSum.MustDrop()

	dice := numerator.MustDiv(denominator, true)
	denominator.MustDrop()

	return dice
}

// DiceCoeff returns the smoothed dice coefficient of yTrue and yPred as
// float64. See DiceCoeffTensor.
func DiceCoeff(yTrue, yPred *ts.Tensor) float64 {
	var dice float64
	ts.NoGrad(func() {
		d := DiceCoeffTensor(yTrue, yPred)
		dice = d.Float64Values()[0]
		d.MustDrop()
	})

	return dice
}
