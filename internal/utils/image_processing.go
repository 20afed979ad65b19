package utils

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ToGray converts img to luminance using the 0.299/0.587/0.114 weights,
// rounded to the nearest integer.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	src := imaging.Clone(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range w {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			b := float64(row[x*4+2])
			out[x] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
		}
	}
	return dst
}

// GrayToNRGBA replicates a luminance plane into three opaque color channels.
func GrayToNRGBA(g *image.Gray) *image.NRGBA {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := g.Pix[y*g.Stride+x]
			i := y*dst.Stride + x*4
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = v, v, v, 255
		}
	}
	return dst
}

// CropImageRect crops an image to the given rectangle. Returns nil when the
// rectangle does not intersect the image.
func CropImageRect(img image.Image, rect image.Rectangle) *image.NRGBA {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil
	}
	return imaging.Crop(img, rect)
}

// CountNonZero counts pixels with a non-zero value inside rect.
func CountNonZero(g *image.Gray, rect image.Rectangle) int {
	rect = rect.Intersect(g.Rect)
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		off := g.PixOffset(rect.Min.X, y)
		for _, v := range g.Pix[off : off+rect.Dx()] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// BlankNRGBA returns an opaque image of the given size filled with c.
func BlankNRGBA(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}
