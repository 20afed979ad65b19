package filter

import (
	"image"
	"math"
)

// Bilateral holds the parameters of an edge-preserving bilateral filter.
type Bilateral struct {
	Diameter   int
	SigmaColor float64
	SigmaSpace float64
}

// DefaultBilateral is the smoothing applied before gray removal.
var DefaultBilateral = Bilateral{Diameter: 9, SigmaColor: 75, SigmaSpace: 75}

type tap struct {
	dx, dy int
	w      float64
}

// Apply filters the color channels of src. Neighbours within Diameter/2 are
// weighted by spatial distance and by the L1 color distance to the center
// pixel. Borders reflect without repeating the edge pixel.
func (b Bilateral) Apply(src *image.NRGBA) *image.NRGBA {
	radius := b.Diameter / 2
	if radius < 1 {
		radius = 1
	}
	spaceCoeff := -0.5 / (b.SigmaSpace * b.SigmaSpace)
	colorCoeff := -0.5 / (b.SigmaColor * b.SigmaColor)

	var taps []tap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if math.Sqrt(r2) > float64(radius) {
				continue
			}
			taps = append(taps, tap{dx: dx, dy: dy, w: math.Exp(r2 * spaceCoeff)})
		}
	}
	var colorWeight [3*255 + 1]float64
	for i := range colorWeight {
		d := float64(i)
		colorWeight[i] = math.Exp(d * d * colorCoeff)
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			ci := y*src.Stride + x*4
			r0, g0, b0 := int(src.Pix[ci]), int(src.Pix[ci+1]), int(src.Pix[ci+2])
			var sr, sg, sb, sw float64
			for _, t := range taps {
				nx := reflect101(x+t.dx, w)
				ny := reflect101(y+t.dy, h)
				ni := ny*src.Stride + nx*4
				r, g, bl := int(src.Pix[ni]), int(src.Pix[ni+1]), int(src.Pix[ni+2])
				wt := t.w * colorWeight[absInt(r-r0)+absInt(g-g0)+absInt(bl-b0)]
				sr += wt * float64(r)
				sg += wt * float64(g)
				sb += wt * float64(bl)
				sw += wt
			}
			di := y*dst.Stride + x*4
			dst.Pix[di] = clampByte(sr / sw)
			dst.Pix[di+1] = clampByte(sg / sw)
			dst.Pix[di+2] = clampByte(sb / sw)
			dst.Pix[di+3] = 255
		}
	}
	return dst
}

// reflect101 maps an out-of-range index into [0, n) as ...2 1 | 0 1 2 ... n-1 | n-2...
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
