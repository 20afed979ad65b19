package align

import (
	"image"
	"math"
	"math/rand/v2"
)

const (
	descriptorBits = 256
	angleBins      = 30
	patternSpread  = 13
)

type testPair struct {
	ax, ay, bx, by int
}

// steered holds the test pattern rotated into each angle bin.
var steered = buildSteeredPatterns()

func buildSteeredPatterns() [angleBins][descriptorBits]testPair {
	rng := rand.New(rand.NewPCG(0x0b1e, 0xb41ef))
	sample := func() float64 {
		v := rng.NormFloat64() * float64(patchSize) / 5
		return math.Max(-patternSpread, math.Min(patternSpread, math.Round(v)))
	}
	type fpair struct{ ax, ay, bx, by float64 }
	var base [descriptorBits]fpair
	for i := range base {
		base[i] = fpair{sample(), sample(), sample(), sample()}
		for base[i].ax == base[i].bx && base[i].ay == base[i].by {
			base[i].bx, base[i].by = sample(), sample()
		}
	}

	var out [angleBins][descriptorBits]testPair
	for bin := range angleBins {
		theta := 2 * math.Pi * float64(bin) / angleBins
		sin, cos := math.Sincos(theta)
		rot := func(x, y float64) (int, int) {
			return int(math.Round(x*cos - y*sin)), int(math.Round(x*sin + y*cos))
		}
		for i, p := range base {
			ax, ay := rot(p.ax, p.ay)
			bx, by := rot(p.bx, p.by)
			out[bin][i] = testPair{ax, ay, bx, by}
		}
	}
	return out
}

func angleBin(angle float64) int {
	bin := int(math.Round(angle / (2 * math.Pi / angleBins)))
	bin %= angleBins
	if bin < 0 {
		bin += angleBins
	}
	return bin
}

// describe computes the steered BRIEF descriptor of the keypoint at (cx, cy)
// in a smoothed level image.
func describe(smooth *image.Gray, cx, cy int, angle float64) Descriptor {
	var d Descriptor
	pattern := &steered[angleBin(angle)]
	w, h := smooth.Rect.Dx(), smooth.Rect.Dy()
	at := func(dx, dy int) uint8 {
		x := min(max(cx+dx, 0), w-1)
		y := min(max(cy+dy, 0), h-1)
		return smooth.Pix[y*smooth.Stride+x]
	}
	for i, p := range pattern {
		if at(p.ax, p.ay) < at(p.bx, p.by) {
			d[i/8] |= 1 << (i % 8)
		}
	}
	return d
}
