package detector

import (
	"image"
	"slices"

	"github.com/MeKo-Tech/gabarito/internal/mempool"
)

// Contour is a closed boundary polygon. Parent indexes the enclosing
// contour in the slice returned by FindContours, or -1 at the top level.
// Hole contours bound background regions enclosed by foreground.
type Contour struct {
	Points []image.Point
	Hole   bool
	Parent int
}

// FindContours traces the boundaries of every non-zero region of bin
// (8-connected) and of every background hole inside one (4-connected,
// not touching the image border). Runs of collinear boundary pixels are
// compressed to their end points. Contours are ordered by the raster
// position of their first pixel.
func FindContours(bin *image.Gray) []Contour {
	w, h := bin.Rect.Dx(), bin.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	fg := func(i int) bool { return bin.Pix[(i/w)*bin.Stride+i%w] != 0 }
	bg := func(i int) bool { return !fg(i) }

	fgLabels, fgComps := labelComponents(w, h, fg, true)
	bgLabels, bgComps := labelComponents(w, h, bg, false)
	defer mempool.Ints.Put(fgLabels)
	defer mempool.Ints.Put(bgLabels)

	type item struct {
		start int
		label int
		hole  bool
	}
	items := make([]item, 0, len(fgComps))
	for i, c := range fgComps {
		items = append(items, item{start: c.start, label: i + 1})
	}
	for i, c := range bgComps {
		if !c.border {
			items = append(items, item{start: c.start, label: i + 1, hole: true})
		}
	}
	slices.SortFunc(items, func(a, b item) int { return a.start - b.start })

	outerIndex := make(map[int]int, len(fgComps))
	holeIndex := make(map[int]int)
	for i, it := range items {
		if it.hole {
			holeIndex[it.label] = i
		} else {
			outerIndex[it.label] = i
		}
	}

	out := make([]Contour, len(items))
	for i, it := range items {
		sx, sy := it.start%w, it.start/w
		c := Contour{Hole: it.hole, Parent: -1}
		if it.hole {
			c.Points = traceMoore(bgLabels, w, h, it.label, sx, sy, bgComps[it.label-1].size)
			// The pixel above a hole's first pixel is always foreground.
			c.Parent = outerIndex[fgLabels[it.start-w]]
		} else {
			c.Points = traceMoore(fgLabels, w, h, it.label, sx, sy, fgComps[it.label-1].size)
			if sy > 0 {
				if idx, ok := holeIndex[bgLabels[it.start-w]]; ok {
					c.Parent = idx
				}
			}
		}
		out[i] = c
	}
	return out
}

// Clockwise 8-neighbourhood starting east.
var (
	mooreDX = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	mooreDY = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

func mooreDir(dx, dy int) int {
	for i := range 8 {
		if mooreDX[i] == dx && mooreDY[i] == dy {
			return i
		}
	}
	return 0
}

// traceMoore follows the boundary of label starting from its first raster
// pixel (sx, sy), whose west neighbour is known to be outside the label.
// Tracing stops when the start pixel is about to repeat its first move.
func traceMoore(labels []int, w, h, label, sx, sy, size int) []image.Point {
	isLabel := func(x, y int) bool {
		return x >= 0 && y >= 0 && x < w && y < h && labels[y*w+x] == label
	}
	next := func(cx, cy, bx, by int) (int, int, int, int, bool) {
		start := (mooreDir(bx-cx, by-cy) + 1) % 8
		for k := range 8 {
			i := (start + k) % 8
			tx, ty := cx+mooreDX[i], cy+mooreDY[i]
			if isLabel(tx, ty) {
				return tx, ty, bx, by, true
			}
			bx, by = tx, ty
		}
		return 0, 0, 0, 0, false
	}

	pts := []image.Point{{X: sx, Y: sy}}
	fx, fy, bx, by, ok := next(sx, sy, sx-1, sy)
	if !ok {
		return pts
	}
	cx, cy := fx, fy
	pts = appendChain(pts, image.Pt(cx, cy))

	for steps := 4*size + 8; steps > 0; steps-- {
		nx, ny, nbx, nby, found := next(cx, cy, bx, by)
		if !found {
			break
		}
		if cx == sx && cy == sy && nx == fx && ny == fy {
			break
		}
		cx, cy, bx, by = nx, ny, nbx, nby
		pts = appendChain(pts, image.Pt(cx, cy))
	}
	return closeChain(pts)
}

// appendChain appends p, dropping the previous point when it lies on a
// straight run between its neighbours.
func appendChain(pts []image.Point, p image.Point) []image.Point {
	n := len(pts)
	if n > 0 && pts[n-1] == p {
		return pts
	}
	if n >= 2 && straight(pts[n-2], pts[n-1], p) {
		pts = pts[:n-1]
	}
	return append(pts, p)
}

// closeChain removes the duplicated closing point and any collinear
// points across the seam between the last and first points.
func closeChain(pts []image.Point) []image.Point {
	for len(pts) >= 2 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	for len(pts) > 2 && straight(pts[len(pts)-2], pts[len(pts)-1], pts[0]) {
		pts = pts[:len(pts)-1]
	}
	for len(pts) > 2 && straight(pts[len(pts)-1], pts[0], pts[1]) {
		pts = pts[1:]
	}
	return pts
}

// straight reports whether b continues the direction a->b towards c.
func straight(a, b, c image.Point) bool {
	v1x, v1y := b.X-a.X, b.Y-a.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y
	return v1x*v2y-v1y*v2x == 0 && v1x*v2x+v1y*v2y > 0
}
