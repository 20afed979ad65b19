package align

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/gabarito/internal/testutil"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

func TestHamming(t *testing.T) {
	var a, b Descriptor
	assert.Equal(t, 0, Hamming(&a, &b))
	b[0] = 0xff
	b[31] = 0x01
	assert.Equal(t, 9, Hamming(&a, &b))
	for i := range a {
		a[i] = 0xff
	}
	b = Descriptor{}
	assert.Equal(t, 256, Hamming(&a, &b))
}

func TestDetectFASTFindsSquareCorners(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 80, 80))
	testutil.FillRect(g, image.Rect(30, 30, 50, 50), color.Gray{Y: 255})

	corners := detectFAST(g, fastThreshold, 3)
	require.NotEmpty(t, corners)

	near := func(x, y int) bool {
		for _, c := range corners {
			if absInt(c.x-x) <= 2 && absInt(c.y-y) <= 2 {
				return true
			}
		}
		return false
	}
	assert.True(t, near(30, 30))
	assert.True(t, near(49, 30))
	assert.True(t, near(30, 49))
	assert.True(t, near(49, 49))
	for _, c := range corners {
		assert.False(t, c.x > 35 && c.x < 45 && c.y > 35 && c.y < 45, "corner inside flat area at %d,%d", c.x, c.y)
	}
}

func TestDetectFASTFlatImage(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 64, 64))
	assert.Empty(t, detectFAST(g, fastThreshold, 3))
	assert.Empty(t, detectFAST(image.NewGray(image.Rect(0, 0, 5, 5)), fastThreshold, 3))
}

func TestLevelQuotaSumsToMax(t *testing.T) {
	o := NewORB(MaxFeatures)
	quota := o.levelQuota()
	require.Len(t, quota, 8)
	sum := 0
	for i, q := range quota {
		sum += q
		if i > 0 && i < len(quota)-1 {
			assert.LessOrEqual(t, q, quota[i-1])
		}
	}
	assert.Equal(t, MaxFeatures, sum)
}

func TestAngleBinWraps(t *testing.T) {
	assert.Equal(t, 0, angleBin(0))
	assert.Equal(t, 0, angleBin(2*3.141592653589793))
	assert.Equal(t, 15, angleBin(3.141592653589793))
	assert.Equal(t, 29, angleBin(-0.2))
}

func TestDetectAndComputeOnSheet(t *testing.T) {
	sheet := testutil.DefaultSheet()
	g := utils.ToGray(sheet.Template())

	kps, desc := NewORB(MaxFeatures).DetectAndCompute(g)
	require.Len(t, desc, len(kps))
	assert.Greater(t, len(kps), 100)
	assert.LessOrEqual(t, len(kps), MaxFeatures)
	for _, kp := range kps {
		assert.True(t, kp.X >= 0 && kp.X < float64(sheet.Width))
		assert.True(t, kp.Y >= 0 && kp.Y < float64(sheet.Height))
	}

	kps2, desc2 := NewORB(MaxFeatures).DetectAndCompute(g)
	assert.Equal(t, kps, kps2)
	assert.Equal(t, desc, desc2)
}

func TestMatchHammingAndBestMatches(t *testing.T) {
	var a, b, c Descriptor
	b[0] = 0x0f
	c[0] = 0xff
	query := []Descriptor{c, a, b}
	train := []Descriptor{a, b}

	matches := MatchHamming(query, train)
	require.Len(t, matches, 3)
	assert.Equal(t, Match{Query: 0, Train: 1, Distance: 4}, matches[0])
	assert.Equal(t, Match{Query: 1, Train: 0, Distance: 0}, matches[1])
	assert.Equal(t, Match{Query: 2, Train: 1, Distance: 0}, matches[2])

	best := BestMatches(matches, 0.7)
	require.Len(t, best, 2)
	assert.Equal(t, 1, best[0].Query, "stable sort keeps the earlier of equal distances first")
	assert.Equal(t, 2, best[1].Query)

	assert.Empty(t, BestMatches(matches, 0.1))
	assert.Nil(t, MatchHamming(query, nil))
}
