package detector

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Contour rendering defaults.
const (
	ContourThickness = 5
)

// ContourColor is the stroke color of rendered contours.
var ContourColor = color.NRGBA{G: 255, A: 255}

// DrawContours renders every contour as a closed polyline on a black canvas
// of size w x h.
func DrawContours(w, h int, contours []Contour, col color.NRGBA, thickness int) *image.NRGBA {
	canvas := utils.BlankNRGBA(w, h, color.Black)
	for _, c := range contours {
		utils.DrawPolyline(canvas, c.Points, col, thickness, true)
	}
	return canvas
}
