package align

import (
	"image"
	"math"
)

// WarpPerspective maps src through h into a w x h canvas. Each destination
// pixel samples src at H^-1(x, y) bilinearly; samples falling outside src
// are opaque black.
func WarpPerspective(src *image.NRGBA, h Homography, w, ht int) (*image.NRGBA, bool) {
	inv, ok := h.Inverse()
	if !ok || w <= 0 || ht <= 0 {
		return nil, false
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, ht))
	for y := range ht {
		for x := range w {
			sx, sy := inv.Apply(float64(x), float64(y))
			i := y*out.Stride + x*4
			bilinearSample(src, sx, sy, out.Pix[i:i+4:i+4])
		}
	}
	return out, true
}

func bilinearSample(src *image.NRGBA, x, y float64, dst []uint8) {
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	if math.IsInf(x, 0) || math.IsNaN(x) || x < 0 || y < 0 || x > float64(sw-1) || y > float64(sh-1) {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 255
		return
	}
	x0, y0 := int(x), int(y)
	x1, y1 := min(x0+1, sw-1), min(y0+1, sh-1)
	fx, fy := x-float64(x0), y-float64(y0)
	p00 := src.Pix[y0*src.Stride+x0*4:]
	p10 := src.Pix[y0*src.Stride+x1*4:]
	p01 := src.Pix[y1*src.Stride+x0*4:]
	p11 := src.Pix[y1*src.Stride+x1*4:]
	for c := range 3 {
		top := lerp(float64(p00[c]), float64(p10[c]), fx)
		bot := lerp(float64(p01[c]), float64(p11[c]), fx)
		dst[c] = uint8(lerp(top, bot, fy) + 0.5)
	}
	dst[3] = 255
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
