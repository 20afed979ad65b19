package region

import (
	"fmt"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Viewport is where the page image is drawn on screen.
type Viewport struct {
	Left, Top, Width, Height float64
}

// Segment is a straight line in screen space.
type Segment struct {
	From, To utils.Point
}

// Shape is the screen-space outline of a region with its grid lines.
type Shape struct {
	Name     string
	Min, Max utils.Point
	Grid     []Segment
}

// Overlay projects r into the viewport for display. Stored y values are
// shifted by -1.0 page heights: screenY = top + (y - 1.0) * height.
func Overlay(r Region, vp Viewport) Shape {
	p1 := utils.Point{X: vp.Left + r.X1*vp.Width, Y: vp.Top + (r.Y1-1.0)*vp.Height}
	p2 := utils.Point{X: vp.Left + r.X2*vp.Width, Y: vp.Top + (r.Y2-1.0)*vp.Height}
	s := Shape{Name: r.Name, Min: p1, Max: p2}

	if r.Rows < 1 || r.Columns < 1 {
		return s
	}
	cellW := (p2.X - p1.X) / float64(r.Columns)
	cellH := (p2.Y - p1.Y) / float64(r.Rows)
	for l := 1; l < r.Rows; l++ {
		y := p1.Y + float64(l)*cellH
		s.Grid = append(s.Grid, Segment{From: utils.Point{X: p1.X, Y: y}, To: utils.Point{X: p2.X, Y: y}})
	}
	for c := 1; c < r.Columns; c++ {
		x := p1.X + float64(c)*cellW
		s.Grid = append(s.Grid, Segment{From: utils.Point{X: x, Y: p1.Y}, To: utils.Point{X: x, Y: p2.Y}})
	}
	return s
}

// FromDrag builds the region for a rectangle dragged from start to end in
// screen space. index is the number of regions already defined.
func FromDrag(start, end utils.Point, vp Viewport, index int) Region {
	return Region{
		Name:    fmt.Sprintf("Rectangle %d", index),
		X1:      (start.X - vp.Left) / vp.Width,
		Y1:      1.0 + (start.Y-vp.Top)/vp.Height,
		X2:      (end.X - vp.Left) / vp.Width,
		Y2:      1.0 + (end.Y-vp.Top)/vp.Height,
		Rows:    1,
		Columns: 1,
	}
}
