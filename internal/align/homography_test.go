package align

import (
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

var trueH = Homography{0.98, -0.05, 12, 0.04, 1.01, -7, 1e-5, -2e-5, 1}

func TestComputeHomographyExact(t *testing.T) {
	p := [4]utils.Point{{0, 0}, {100, 0}, {100, 80}, {0, 80}}
	var q [4]utils.Point
	for i := range p {
		q[i].X, q[i].Y = trueH.Apply(p[i].X, p[i].Y)
	}
	h, ok := computeHomography(p, q)
	require.True(t, ok)
	for i := range h {
		assert.InDelta(t, trueH[i], h[i], 1e-6)
	}

	_, ok = computeHomography([4]utils.Point{{0, 0}, {0, 0}, {0, 0}, {0, 0}}, q)
	assert.False(t, ok)
}

func TestInverseComposesToIdentity(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("H^-1 * H maps points back", prop.ForAll(
		func(x, y float64) bool {
			inv, ok := trueH.Inverse()
			if !ok {
				return false
			}
			u, v := trueH.Apply(x, y)
			bx, by := inv.Apply(u, v)
			return abs(bx-x) < 1e-6 && abs(by-y) < 1e-6
		},
		gen.Float64Range(0, 600),
		gen.Float64Range(0, 800),
	))
	properties.TestingRun(t)

	_, ok := Homography{}.Inverse()
	assert.False(t, ok)
}

func TestFitHomographyLeastSquares(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	var src, dst []utils.Point
	for range 50 {
		x, y := rng.Float64()*600, rng.Float64()*800
		u, v := trueH.Apply(x, y)
		src = append(src, utils.Point{X: x, Y: y})
		dst = append(dst, utils.Point{X: u + rng.NormFloat64()*0.2, Y: v + rng.NormFloat64()*0.2})
	}
	h, ok := fitHomography(src, dst)
	require.True(t, ok)
	for _, p := range []utils.Point{{0, 0}, {300, 400}, {600, 800}} {
		ex, ey := trueH.Apply(p.X, p.Y)
		gx, gy := h.Apply(p.X, p.Y)
		assert.InDelta(t, ex, gx, 0.5)
		assert.InDelta(t, ey, gy, 0.5)
	}

	_, ok = fitHomography(src[:3], dst[:3])
	assert.False(t, ok)
}

func TestRANSACRejectsOutliers(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	var src, dst []utils.Point
	for i := range 120 {
		x, y := rng.Float64()*600, rng.Float64()*800
		u, v := trueH.Apply(x, y)
		if i%3 == 0 {
			u, v = rng.Float64()*600, rng.Float64()*800
		}
		src = append(src, utils.Point{X: x, Y: y})
		dst = append(dst, utils.Point{X: u, Y: v})
	}

	h, mask, err := DefaultRANSAC().FindHomography(src, dst)
	require.NoError(t, err)

	inliers := 0
	for i, in := range mask {
		if in {
			inliers++
			assert.NotZero(t, i%3, "outlier %d accepted", i)
		}
	}
	assert.GreaterOrEqual(t, inliers, 78)

	gx, gy := h.Apply(250, 250)
	ex, ey := trueH.Apply(250, 250)
	assert.InDelta(t, ex, gx, 0.5)
	assert.InDelta(t, ey, gy, 0.5)
}

func TestRANSACTooFewPoints(t *testing.T) {
	_, _, err := DefaultRANSAC().FindHomography(make([]utils.Point, 3), make([]utils.Point, 3))
	require.ErrorIs(t, err, ErrTooFewMatches)
}

func TestAdaptiveIterations(t *testing.T) {
	assert.Equal(t, 1, adaptiveIterations(0.995, 1, 2000))
	assert.Equal(t, 2000, adaptiveIterations(0.995, 0.01, 2000))
	assert.Equal(t, 83, adaptiveIterations(0.995, 0.5, 2000))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
