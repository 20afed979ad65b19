package align

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// ErrTooFewMatches is returned when there are not enough correspondences
// to estimate a homography.
var ErrTooFewMatches = errors.New("not enough feature matches to estimate homography")

// RANSAC configures robust homography estimation.
type RANSAC struct {
	// Threshold is the maximum reprojection error, in pixels, of an inlier.
	Threshold     float64
	MaxIterations int
	Confidence    float64
	Seed          uint64
}

// DefaultRANSAC mirrors the conventional reprojection settings.
func DefaultRANSAC() RANSAC {
	return RANSAC{Threshold: 3, MaxIterations: 2000, Confidence: 0.995, Seed: 1}
}

// FindHomography estimates H with H(src[i]) ~ dst[i], ignoring outliers.
// The returned mask flags the inliers of the final model.
func (r RANSAC) FindHomography(src, dst []utils.Point) (Homography, []bool, error) {
	n := len(src)
	if n < 4 || n != len(dst) {
		return Homography{}, nil, ErrTooFewMatches
	}

	rng := rand.New(rand.NewPCG(r.Seed, r.Seed+0x5eed))
	thresh2 := r.Threshold * r.Threshold

	var best Homography
	var bestMask []bool
	bestCount := 0
	iterations := r.MaxIterations

	for it := 0; it < iterations; it++ {
		idx, ok := sampleFour(rng, src, n)
		if !ok {
			continue
		}
		var p, q [4]utils.Point
		for k, i := range idx {
			p[k], q[k] = src[i], dst[i]
		}
		h, ok := computeHomography(p, q)
		if !ok {
			continue
		}
		mask, count := inliers(h, src, dst, thresh2)
		if count > bestCount {
			best, bestMask, bestCount = h, mask, count
			iterations = min(iterations, adaptiveIterations(r.Confidence, float64(count)/float64(n), r.MaxIterations))
		}
	}
	if bestCount < 4 {
		return Homography{}, nil, ErrTooFewMatches
	}

	var is, id []utils.Point
	for i, in := range bestMask {
		if in {
			is = append(is, src[i])
			id = append(id, dst[i])
		}
	}
	if refined, ok := fitHomography(is, id); ok {
		if mask, count := inliers(refined, src, dst, thresh2); count >= bestCount {
			best, bestMask = refined, mask
		}
	}
	return best, bestMask, nil
}

func inliers(h Homography, src, dst []utils.Point, thresh2 float64) ([]bool, int) {
	mask := make([]bool, len(src))
	count := 0
	for i := range src {
		x, y := h.Apply(src[i].X, src[i].Y)
		dx, dy := x-dst[i].X, y-dst[i].Y
		if dx*dx+dy*dy <= thresh2 {
			mask[i] = true
			count++
		}
	}
	return mask, count
}

// sampleFour draws four distinct indices whose source points have no
// collinear triple.
func sampleFour(rng *rand.Rand, pts []utils.Point, n int) ([4]int, bool) {
	var idx [4]int
	for k := 0; k < 4; k++ {
	draw:
		for attempts := 0; ; attempts++ {
			if attempts > 100 {
				return idx, false
			}
			c := rng.IntN(n)
			for j := 0; j < k; j++ {
				if idx[j] == c {
					continue draw
				}
			}
			idx[k] = c
			break
		}
	}
	for a := 0; a < 4; a++ {
		for b := a + 1; b < 4; b++ {
			for c := b + 1; c < 4; c++ {
				if collinear(pts[idx[a]], pts[idx[b]], pts[idx[c]]) {
					return idx, false
				}
			}
		}
	}
	return idx, true
}

func collinear(a, b, c utils.Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return math.Abs(cross) < 1e-6*(1+math.Hypot(b.X-a.X, b.Y-a.Y)*math.Hypot(c.X-a.X, c.Y-a.Y))
}

// adaptiveIterations is the number of draws needed to pick an all-inlier
// sample with the given confidence.
func adaptiveIterations(confidence, inlierRatio float64, maxIters int) int {
	if inlierRatio >= 1 {
		return 1
	}
	num := math.Log(1 - confidence)
	denom := math.Log(1 - math.Pow(inlierRatio, 4))
	if denom >= 0 || math.IsNaN(denom) {
		return maxIters
	}
	n := num / denom
	if n > float64(maxIters) {
		return maxIters
	}
	return int(math.Ceil(n))
}
