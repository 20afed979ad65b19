package align

import (
	"image"

	"github.com/MeKo-Tech/gabarito/internal/mempool"
)

// circle holds the 16 Bresenham offsets of radius 3 used by FAST, clockwise
// from the top.
var circle = [16]image.Point{
	{0, -3}, {1, -3}, {2, -2}, {3, -1},
	{3, 0}, {3, 1}, {2, 2}, {1, 3},
	{0, 3}, {-1, 3}, {-2, 2}, {-3, 1},
	{-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
}

const (
	fastArc       = 9
	fastThreshold = 20
)

type corner struct {
	x, y  int
	score int
}

// detectFAST finds FAST-9 corners at least border pixels away from the
// image edge, keeping only local score maxima in a 3x3 window.
func detectFAST(g *image.Gray, threshold, border int) []corner {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	if border < 3 {
		border = 3
	}
	if w <= 2*border || h <= 2*border {
		return nil
	}

	var offs [16]int
	for i, p := range circle {
		offs[i] = p.Y*g.Stride + p.X
	}

	scores := mempool.Ints.Get(w * h)
	defer mempool.Ints.Put(scores)
	var candidates []corner
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			idx := y*g.Stride + x
			s := cornerScore(g.Pix, idx, &offs, threshold)
			if s > 0 {
				scores[y*w+x] = s
				candidates = append(candidates, corner{x: x, y: y, score: s})
			}
		}
	}

	out := candidates[:0]
	for _, c := range candidates {
		if isLocalMax(scores, w, c) {
			out = append(out, c)
		}
	}
	return out
}

func isLocalMax(scores []int, w int, c corner) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			n := scores[(c.y+dy)*w+c.x+dx]
			// Ties resolve toward the earlier pixel in scan order.
			if n > c.score || (n == c.score && (dy < 0 || (dy == 0 && dx < 0))) {
				return false
			}
		}
	}
	return true
}

// cornerScore returns 0 when the pixel is not a FAST corner, otherwise the
// largest threshold at which it still is one.
func cornerScore(pix []uint8, idx int, offs *[16]int, threshold int) int {
	p := int(pix[idx])
	hi, lo := p+threshold, p-threshold

	// Any 9-pixel arc covers at least two of the four compass points.
	bright, dark := 0, 0
	for k := 0; k < 16; k += 4 {
		v := int(pix[idx+offs[k]])
		if v > hi {
			bright++
		} else if v < lo {
			dark++
		}
	}
	if bright < 2 && dark < 2 {
		return 0
	}

	var d [16]int
	for k := range 16 {
		d[k] = int(pix[idx+offs[k]]) - p
	}

	best := 0
	for start := range 16 {
		minBright, minDark := 255, 255
		for k := range fastArc {
			v := d[(start+k)%16]
			minBright = min(minBright, v)
			minDark = min(minDark, -v)
		}
		best = max(best, minBright, minDark)
	}
	if best <= threshold {
		return 0
	}
	return best
}
