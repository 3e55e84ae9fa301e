package metric

import (
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

// epsilon clips probabilities away from 0 and 1 before taking the log.
const epsilon = 1e-7

// CategoricalCrossEntropy computes mean over batch and pixels of
// -sum_c(yTrue*log(yPred)) for probability maps in shape [B C H W].
// yTrue is one-hot (or soft) along the class dim.
func CategoricalCrossEntropy(yTrue, yPred *ts.Tensor) *ts.Tensor {
	clipped := yPred.MustClip(ts.FloatScalar(epsilon), ts.FloatScalar(1-epsilon), false)
	logp := clipped.MustLog(true)
	tlogp := yTrue.MustMul(logp, false)
	logp.MustDrop()

	// sum over class dim => [B H W]
	perPixel := tlogp.MustSum1([]int64{1}, false, gotch.Float, true)
	mean := perPixel.MustMean(gotch.Float, true)

	return mean.MustMul1(ts.FloatScalar(-1), true)
}
