package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGrayWeights(t *testing.T) {
	img := BlankNRGBA(2, 2, color.NRGBA{R: 255, A: 255})
	g := ToGray(img)
	assert.Equal(t, uint8(76), g.GrayAt(1, 1).Y)

	white := ToGray(BlankNRGBA(1, 1, color.White))
	assert.Equal(t, uint8(255), white.GrayAt(0, 0).Y)
}

func TestToGrayNormalizesOrigin(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 8, 9))
	src.SetGray(5, 5, color.Gray{Y: 42})
	g := ToGray(src)
	assert.Equal(t, image.Rect(0, 0, 3, 4), g.Rect)
	assert.Equal(t, uint8(42), g.GrayAt(0, 0).Y)
}

func TestGrayToNRGBA(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 2, 1))
	g.SetGray(1, 0, color.Gray{Y: 99})
	c := GrayToNRGBA(g)
	assert.Equal(t, color.NRGBA{R: 99, G: 99, B: 99, A: 255}, c.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{A: 255}, c.NRGBAAt(0, 0))
}

func TestCropImageRect(t *testing.T) {
	img := BlankNRGBA(10, 10, color.White)
	crop := CropImageRect(img, image.Rect(8, 8, 20, 20))
	require.NotNil(t, crop)
	assert.Equal(t, 2, crop.Rect.Dx())
	assert.Nil(t, CropImageRect(img, image.Rect(20, 20, 30, 30)))
}

func TestCountNonZero(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 10, 10))
	for x := range 5 {
		g.SetGray(x, 2, color.Gray{Y: 255})
	}
	assert.Equal(t, 5, CountNonZero(g, g.Rect))
	assert.Equal(t, 2, CountNonZero(g, image.Rect(3, 0, 10, 10)))
	assert.Equal(t, 0, CountNonZero(g, image.Rect(0, 3, 10, 10)))
	assert.Equal(t, 5, CountNonZero(g, image.Rect(-5, -5, 50, 50)))
}

func TestDrawLineThickness(t *testing.T) {
	dst := BlankNRGBA(20, 20, color.Black)
	green := color.NRGBA{G: 255, A: 255}
	DrawLine(dst, image.Pt(2, 10), image.Pt(17, 10), green, 5)

	assert.Equal(t, green, dst.NRGBAAt(10, 10))
	assert.Equal(t, green, dst.NRGBAAt(10, 8))
	assert.Equal(t, green, dst.NRGBAAt(10, 12))
	assert.NotEqual(t, green, dst.NRGBAAt(10, 13))
	assert.NotEqual(t, green, dst.NRGBAAt(10, 7))
}

func TestDrawPolylineClosed(t *testing.T) {
	dst := BlankNRGBA(10, 10, color.Black)
	red := color.NRGBA{R: 255, A: 255}
	DrawPolyline(dst, []image.Point{{1, 1}, {8, 1}, {8, 8}, {1, 8}}, red, 1, true)
	assert.Equal(t, red, dst.NRGBAAt(1, 5))
	assert.Equal(t, red, dst.NRGBAAt(5, 8))
	assert.NotEqual(t, red, dst.NRGBAAt(5, 5))
}
