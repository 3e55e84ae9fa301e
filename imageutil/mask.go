package imageutil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"
)

// Palette maps class ids to names and colors.
type Palette struct {
	Names  []string
	Colors []color.RGBA
}

// Len returns number of classes of the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// ReadPalette reads a CSV file with header `name,r,g,b`, one row per class
// in class id order. Color values must be in 0..255.
func ReadPalette(filename string) (*Palette, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, df.Err
	}
	df = df.Select([]string{"name", "r", "g", "b"})
	if df.Err != nil {
		return nil, df.Err
	}

	names := df.Col("name").Records()
	var channels [3][]int
	for i, col := range []string{"r", "g", "b"} {
		vals, err := df.Col(col).Int()
		if err != nil {
			return nil, fmt.Errorf("palette column %q: %w", col, err)
		}
		for row, v := range vals {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("palette row %d (%s): %s value %d out of range 0..255", row+1, names[row], col, v)
			}
		}
		channels[i] = vals
	}

	p := &Palette{Names: names}
	for i := range names {
		p.Colors = append(p.Colors, color.RGBA{
			R: uint8(channels[0][i]),
			G: uint8(channels[1][i]),
			B: uint8(channels[2][i]),
			A: 255,
		})
	}

	return p, nil
}

// DefaultPalette creates a palette of k colors following the Pascal VOC
// color map. Class 0 is black.
func DefaultPalette(k int) *Palette {
	p := &Palette{}
	for i := 0; i < k; i++ {
		p.Names = append(p.Names, fmt.Sprintf("class_%d", i))
		var r, g, b uint8
		c := i
		for j := 0; j < 8; j++ {
			r |= uint8((c>>0)&1) << (7 - j)
			g |= uint8((c>>1)&1) << (7 - j)
			b |= uint8((c>>2)&1) << (7 - j)
			c >>= 3
		}
		p.Colors = append(p.Colors, color.RGBA{r, g, b, 255})
	}

	return p
}

// ColorMask paints class ids of mask with palette colors. Ids outside the
// palette are painted black.
func ColorMask(mask *image.Gray, p *Palette) *image.RGBA {
	b := mask.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			id := int(mask.GrayAt(x, y).Y)
			c := color.RGBA{0, 0, 0, 255}
			if id < p.Len() {
				c = p.Colors[id]
			}
			out.SetRGBA(x, y, c)
		}
	}

	return out
}

// ResizeMask resizes a label image to w x h. Nearest neighbour keeps labels
// intact.
func ResizeMask(mask image.Image, w, h int) image.Image {
	return resize.Resize(uint(w), uint(h), mask, resize.NearestNeighbor)
}

// Overlay draws mask over img with given opacity (0-255).
func Overlay(img, mask image.Image, alpha uint8) *image.RGBA {
	rec := img.Bounds()
	dst := image.NewRGBA(rec)
	draw.Draw(dst, rec, img, rec.Min, draw.Src)

	m := image.NewUniform(color.Alpha{alpha})
	draw.DrawMask(dst, rec, mask, mask.Bounds().Min, m, image.Point{}, draw.Over)

	return dst
}

// SavePNG encodes img to a png file.
func SavePNG(img image.Image, filename string) error {
	out, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
