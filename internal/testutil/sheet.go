package testutil

import (
	"image"
	"image/color"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/gabarito/internal/region"
)

// Sheet describes a synthetic answer sheet: a textured page carrying one
// row of bubbles. The texture gives feature detectors something to lock on.
type Sheet struct {
	Width, Height int
	Seed          uint64
	// Grid is the bubble row, split into Choices equal cells.
	Grid    image.Rectangle
	Choices int
}

// DefaultSheet returns a 600x800 page with four bubbles.
func DefaultSheet() Sheet {
	return Sheet{
		Width:   600,
		Height:  800,
		Seed:    7,
		Grid:    image.Rect(100, 400, 500, 480),
		Choices: 4,
	}
}

// Template renders the blank sheet.
func (s Sheet) Template() *image.NRGBA {
	img := imaging.New(s.Width, s.Height, color.White)
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))

	keepOut := s.Grid.Inset(-40)
	margin := 40
	placed := 0
	for placed < 70 {
		w := 12 + rng.IntN(50)
		h := 12 + rng.IntN(50)
		x := margin + rng.IntN(s.Width-2*margin-w)
		y := margin + rng.IntN(s.Height-2*margin-h)
		r := image.Rect(x, y, x+w, y+h)
		if r.Overlaps(keepOut) {
			continue
		}
		shade := uint8(rng.IntN(90))
		FillRect(img, r, color.NRGBA{R: shade, G: shade, B: shade, A: 255})
		placed++
	}

	DrawText(img, "GABARITO", s.Grid.Min.X, keepOut.Min.Y-8, color.Black)
	cellW := s.Grid.Dx() / s.Choices
	for i := range s.Choices {
		cx, cy := s.bubbleCenter(i)
		DrawText(img, string(rune('A'+i)), s.Grid.Min.X+i*cellW+cellW/2-3, s.Grid.Min.Y+14, color.Black)
		DrawRing(img, cx, cy, s.bubbleRadius(), 2, color.Black)
	}
	return img
}

// Marked renders the sheet with the given choices filled in.
func (s Sheet) Marked(choices ...int) *image.NRGBA {
	img := s.Template()
	for _, c := range choices {
		cx, cy := s.bubbleCenter(c)
		FillDisc(img, cx, cy, s.bubbleRadius(), color.Black)
	}
	return img
}

// Region returns the region covering the bubble row as one question with
// Choices horizontal alternatives.
func (s Sheet) Region(name string) region.Region {
	return region.Region{
		Name:            name,
		X1:              float64(s.Grid.Min.X) / float64(s.Width),
		Y1:              float64(s.Grid.Min.Y) / float64(s.Height),
		X2:              float64(s.Grid.Max.X) / float64(s.Width),
		Y2:              float64(s.Grid.Max.Y) / float64(s.Height),
		Rows:            1,
		Columns:         s.Choices,
		AnalyzeVertical: true,
	}
}

func (s Sheet) bubbleRadius() int {
	return min(s.Grid.Dx()/s.Choices, s.Grid.Dy()) * 3 / 10
}

// bubbleCenter sits low in the cell so the filled disc falls inside the
// detection window, which starts 30px below the cell top.
func (s Sheet) bubbleCenter(choice int) (int, int) {
	cellW := s.Grid.Dx() / s.Choices
	cx := s.Grid.Min.X + choice*cellW + cellW/2
	cy := s.Grid.Min.Y + s.Grid.Dy()*11/16
	return cx, cy
}
