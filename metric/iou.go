package metric

import (
	"github.com/sugarme/gotch"
	ts "github.com/sugarme/gotch/tensor"
)

// IoU calculates intersection over union of two binary maps. Values
// greater than 0.5 are considered foreground.
func IoU(pred, target *ts.Tensor) float64 {
	var iou float64
	ts.NoGrad(func() {
		p := pred.MustGt(ts.FloatScalar(0.5), false).MustTotype(gotch.Double, true)
		t := target.MustGt(ts.FloatScalar(0.5), false).MustTotype(gotch.Double, true)

		inter := p.MustMul(t, false)
		overlap := inter.MustSum(gotch.Double, true).Float64Values()[0]
		pSum := p.MustSum(gotch.Double, true).Float64Values()[0]
		tSum := t.MustSum(gotch.Double, true).Float64Values()[0]

		union := pSum + tSum - overlap
		if union == 0 {
			iou = 1
			return
		}
		iou = overlap / union
	})

	return iou
}

// JaccardIndex calculates mean IoU over `classes` labels of two label maps
// holding integer class ids. Classes absent from both maps are skipped.
func JaccardIndex(pred, target *ts.Tensor, classes int) float64 {
	pVals := pred.Float64Values()
	tVals := target.Float64Values()

	var sum float64
	var count int
	for c := 0; c < classes; c++ {
		var inter, union float64
		for i := range pVals {
			pc := int(pVals[i]) == c
			tc := int(tVals[i]) == c
			if pc && tc {
				inter++
			}
			if pc || tc {
				union++
			}
		}
		if union == 0 {
			continue
		}
		sum += inter / union
		count++
	}
	if count == 0 {
		return 1
	}

	return sum / float64(count)
}
