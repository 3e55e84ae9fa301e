// Package report summarizes segmentation masks.
package report

import (
	"fmt"
	"image"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ClassCounts counts pixels per class id of a label mask. Ids >= k are
// ignored.
func ClassCounts(mask *image.Gray, k int) []int {
	counts := make([]int, k)
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			id := int(mask.GrayAt(x, y).Y)
			if id < k {
				counts[id]++
			}
		}
	}

	return counts
}

// SaveClassChart saves a bar chart of pixel share per class to filename.
// Image format follows the file extension (png, svg, pdf...).
func SaveClassChart(counts []int, names []string, filename string) error {
	if len(names) < len(counts) {
		return fmt.Errorf("got %d class names for %d classes", len(names), len(counts))
	}

	var total int
	for _, c := range counts {
		total += c
	}

	v := make(plotter.Values, len(counts))
	for i, c := range counts {
		if total > 0 {
			v[i] = float64(c) / float64(total)
		}
	}

	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "Class distribution"
	p.Y.Label.Text = "Pixel share"

	bars, err := plotter.NewBarChart(v, vg.Points(20))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(names[:len(counts)]...)

	width := vg.Length(len(counts)+2) * vg.Inch / 2
	if width < 4*vg.Inch {
		width = 4 * vg.Inch
	}

	return p.Save(width, 4*vg.Inch, filename)
}
