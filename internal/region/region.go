// Package region models the named answer-sheet fields that drive mark
// detection and OCR, and their on-disk formats.
package region

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoRegions is returned when a region set is required but empty.
var ErrNoRegions = errors.New("no regions defined")

// Usable reports whether regions loaded alongside err can still drive a
// run: the file was readable and only a later record was malformed.
func Usable(regions []Region, err error) bool {
	var syntax *SyntaxError
	return len(regions) > 0 && (err == nil || errors.As(err, &syntax))
}

// Region is one named rectangle on the template page, split into a grid of
// Rows x Columns answer cells. Coordinates are normalized to the page size.
type Region struct {
	Name            string
	X1, Y1, X2, Y2  float64
	Rows, Columns   int
	AnalyzeVertical bool
	IsWord          bool
	IsNumber        bool
}

// Validate checks the grid invariants.
func (r Region) Validate() error {
	if r.Rows < 1 || r.Columns < 1 {
		return fmt.Errorf("region %q: subdivisions must be at least 1x1, got %dx%d", r.Name, r.Rows, r.Columns)
	}
	return nil
}

// Bounds is an integer pixel rectangle as origin plus size. Width and
// Height may be zero or negative for degenerate regions.
type Bounds struct {
	X, Y, Width, Height int
}

// Rect converts b to an image.Rectangle. Non-positive sizes yield an empty rectangle.
func (b Bounds) Rect() image.Rectangle {
	if b.Width <= 0 || b.Height <= 0 {
		return image.Rectangle{Min: image.Pt(b.X, b.Y), Max: image.Pt(b.X, b.Y)}
	}
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Inside reports whether b has a positive size and lies entirely within a
// cols x rows image anchored at the origin.
func (b Bounds) Inside(cols, rows int) bool {
	return b.Width > 0 && b.Height > 0 &&
		b.X >= 0 && b.Y >= 0 &&
		b.X+b.Width <= cols && b.Y+b.Height <= rows
}

// PixelBounds maps the stored coordinates onto a cols x rows image. The raw
// y values are used as-is; see Overlay for the screen convention.
//
// The arithmetic runs in single precision so that region files keep cutting
// the same pixels they did when they were drawn: 0.7-0.2 of 500 rows is 250
// in float32 but 249 after float64 truncation.
func (r Region) PixelBounds(cols, rows int) Bounds {
	x1, y1 := float32(r.X1), float32(r.Y1)
	x2, y2 := float32(r.X2), float32(r.Y2)
	w, h := float32(cols), float32(rows)
	return Bounds{
		X:      int(x1 * w),
		Y:      int(y1 * h),
		Width:  int(w * (x2 - x1)),
		Height: int(h * (y2 - y1)),
	}
}

// Alternatives is the number of questions the region holds.
func (r Region) Alternatives() int {
	if r.AnalyzeVertical {
		return r.Rows
	}
	return r.Columns
}

// Choices is the number of candidate marks per question.
func (r Region) Choices() int {
	if r.AnalyzeVertical {
		return r.Columns
	}
	return r.Rows
}

// Words returns the regions routed to OCR.
func Words(regions []Region) []Region {
	var out []Region
	for _, r := range regions {
		if r.IsWord {
			out = append(out, r)
		}
	}
	return out
}
