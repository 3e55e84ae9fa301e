// Package imageutil converts between image files and model tensors.
package imageutil

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/chai2010/tiff"
	"github.com/disintegration/imaging"
	ts "github.com/sugarme/gotch/tensor"
)

// ReadImage reads image from file.
func ReadImage(filename string) (image.Image, error) {
	ext := filepath.Ext(filename)
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext {
	case ".png", ".PNG":
		return png.Decode(f)
	case ".jpg", ".jpeg", ".JPG", ".JPEG":
		return jpeg.Decode(f)
	case ".tiff", ".tif", ".TIFF", ".TIF":
		return tiff.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported image format: %v", ext)
	}
}

// ToTensor resizes img to w x h and packs it into a [1 c h w] float tensor
// with values in [0, 1]. c must be 1 (grayscale) or 3 (RGB).
func ToTensor(img image.Image, h, w, c int64) (*ts.Tensor, error) {
	if c != 1 && c != 3 {
		return nil, fmt.Errorf("unsupported channel count: %d", c)
	}

	resized := imaging.Resize(img, int(w), int(h), imaging.Linear)
	if c == 1 {
		resized = imaging.Grayscale(resized)
	}

	plane := int(h * w)
	data := make([]float32, int(c)*plane)
	for y := 0; y < int(h); y++ {
		for x := 0; x < int(w); x++ {
			off := resized.PixOffset(x, y)
			i := y*int(w) + x
			for ch := 0; ch < int(c); ch++ {
				data[ch*plane+i] = float32(resized.Pix[off+ch]) / 255.0
			}
		}
	}

	return ts.MustOfSlice(data).MustView([]int64{1, c, h, w}, true), nil
}

// ArgmaxMask returns per-pixel class ids of a [1 K H W] probability tensor
// as a gray image of size W x H.
func ArgmaxMask(prob *ts.Tensor) (*image.Gray, error) {
	size := prob.MustSize()
	if len(size) != 4 || size[0] != 1 {
		return nil, fmt.Errorf("expected probability tensor of shape [1 K H W], got %v", size)
	}
	k, h, w := int(size[1]), int(size[2]), int(size[3])
	if k > 256 {
		return nil, fmt.Errorf("too many classes for a gray mask: %d", k)
	}

	vals := prob.Float64Values()
	plane := h * w
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for i := 0; i < plane; i++ {
		best := 0
		for c := 1; c < k; c++ {
			if vals[c*plane+i] > vals[best*plane+i] {
				best = c
			}
		}
		mask.Pix[(i/w)*mask.Stride+i%w] = uint8(best)
	}

	return mask, nil
}
