package detector

import (
	"image"
	"math"

	"github.com/MeKo-Tech/gabarito/internal/mempool"
)

// AdaptiveMeanThreshold binarizes g against the mean of each pixel's
// block x block neighbourhood (edges replicated). Output is inverted: 255
// where src <= round(mean) - c, otherwise 0.
func AdaptiveMeanThreshold(g *image.Gray, block, c int) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	if block < 3 || block%2 == 0 {
		block = 3
	}
	r := block / 2

	// Integral image over the replicated-border extension.
	iw, ih := w+2*r, h+2*r
	integral := mempool.Int64s.Get((iw + 1) * (ih + 1))
	defer mempool.Int64s.Put(integral)
	for y := range ih {
		sy := min(max(y-r, 0), h-1)
		var rowSum int64
		for x := range iw {
			sx := min(max(x-r, 0), w-1)
			rowSum += int64(g.Pix[sy*g.Stride+sx])
			integral[(y+1)*(iw+1)+x+1] = integral[y*(iw+1)+x+1] + rowSum
		}
	}

	area := float64(block * block)
	for y := range h {
		for x := range w {
			x0, y0 := x, y
			x1, y1 := x+block, y+block
			sum := integral[y1*(iw+1)+x1] - integral[y0*(iw+1)+x1] - integral[y1*(iw+1)+x0] + integral[y0*(iw+1)+x0]
			mean := int(math.Round(float64(sum) / area))
			if int(g.Pix[y*g.Stride+x]) <= mean-c {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// OtsuThreshold returns the level t maximizing the between-class variance
// of the classes [0, t] and (t, 255].
func OtsuThreshold(g *image.Gray) uint8 {
	var histogram [256]int
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := range h {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			histogram[v]++
		}
	}
	totalPixels := w * h
	if totalPixels == 0 {
		return 0
	}

	var total float64
	for i, n := range histogram {
		total += float64(i) * float64(n)
	}

	var maxVariance, sumB float64
	bestThreshold := 0
	wB := 0
	for t := range 256 {
		wB += histogram[t]
		if wB == 0 {
			continue
		}
		wF := totalPixels - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(histogram[t])
		meanB := sumB / float64(wB)
		meanF := (total - sumB) / float64(wF)
		variance := float64(wB) * float64(wF) * (meanB - meanF) * (meanB - meanF)
		if variance > maxVariance {
			maxVariance = variance
			bestThreshold = t
		}
	}
	return uint8(bestThreshold)
}

// Binarize thresholds g with its Otsu level in two passes: an inverted pass
// (255 where g <= t) followed by a plain pass at the same level over that
// result. Ink therefore ends up 255 and paper 0.
func Binarize(g *image.Gray) (*image.Gray, uint8) {
	t := OtsuThreshold(g)
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			inv := uint8(255)
			if g.Pix[y*g.Stride+x] > t {
				inv = 0
			}
			if inv > t {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst, t
}
