package utils

import (
	"image"
	"image/color"
)

// Point represents a 2D coordinate in float space.
type Point struct {
	X float64
	Y float64
}

// DrawLine draws a segment into dst using Bresenham stepping and a round
// brush of the given thickness.
func DrawLine(dst *image.NRGBA, a, b image.Point, col color.NRGBA, thickness int) {
	x0, y0 := a.X, a.Y
	x1, y1 := b.X, b.Y
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		drawThickPoint(dst, x0, y0, col, thickness)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawPolyline connects consecutive points, closing the shape when closed is true.
func DrawPolyline(dst *image.NRGBA, pts []image.Point, col color.NRGBA, thickness int, closed bool) {
	switch len(pts) {
	case 0:
		return
	case 1:
		drawThickPoint(dst, pts[0].X, pts[0].Y, col, thickness)
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		DrawLine(dst, pts[i], pts[i+1], col, thickness)
	}
	if closed {
		DrawLine(dst, pts[len(pts)-1], pts[0], col, thickness)
	}
}

func drawThickPoint(dst *image.NRGBA, x, y int, col color.NRGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r := (thickness - 1) / 2
	for yy := y - r; yy <= y+r; yy++ {
		for xx := x - r; xx <= x+r; xx++ {
			ddx, ddy := xx-x, yy-y
			if ddx*ddx+ddy*ddy > r*r+r {
				continue
			}
			if image.Pt(xx, yy).In(dst.Rect) {
				dst.SetNRGBA(xx, yy, col)
			}
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
