package omr

import (
	"image"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/region"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Cell insets in pixels. The vertical offset moves every cell down past
// the printed choice labels.
const (
	MarginX = 15
	MarginY = 10
	OffsetX = 0
	OffsetY = 20
)

// Answer is the symbol read for one question of a region.
type Answer struct {
	Region      string
	Subdivision int // 1-based
	Symbol      byte
}

// CellBounds returns the sampled rectangle of choice of question alt
// inside a region whose pixel bounds are b.
func CellBounds(r region.Region, b region.Bounds, alt, choice int) region.Bounds {
	cellW := b.Width / r.Columns
	cellH := b.Height / r.Rows

	subX, subY := b.X, b.Y
	if r.AnalyzeVertical {
		subY += alt * cellH
	} else {
		subX += alt * cellW
	}
	x, y := subX+MarginX+OffsetX, subY+MarginY+OffsetY
	if r.AnalyzeVertical {
		x += choice * cellW
	} else {
		y += choice * cellH
	}
	return region.Bounds{X: x, Y: y, Width: cellW - 2*MarginX, Height: cellH - 2*MarginY}
}

// Counts returns the non-zero pixel count of every choice cell of question
// alt. Cells outside the image count as zero and are reported as warnings.
func Counts(g *image.Gray, r region.Region, alt int, sink logsink.Sink) []int {
	cols, rows := g.Rect.Dx(), g.Rect.Dy()
	b := r.PixelBounds(cols, rows)
	counts := make([]int, r.Choices())
	for choice := range counts {
		cell := CellBounds(r, b, alt, choice)
		if !cell.Inside(cols, rows) {
			logsink.Warnf(sink, "region %s: cell out of bounds at (%d, %d)", r.Name, cell.X, cell.Y)
			continue
		}
		counts[choice] = utils.CountNonZero(g, cell.Rect().Add(g.Rect.Min))
	}
	return counts
}

// ReadAnswers decides every question of the mark regions on a binarized
// page where marks are non-zero. OCR regions are skipped. Answers follow
// region order, then question order.
func ReadAnswers(g *image.Gray, regions []region.Region, sink logsink.Sink) []Answer {
	var answers []Answer
	for _, r := range regions {
		if r.IsWord {
			continue
		}
		for alt := range r.Alternatives() {
			answers = append(answers, Answer{
				Region:      r.Name,
				Subdivision: alt + 1,
				Symbol:      Decide(Counts(g, r, alt, sink), r.IsNumber),
			})
		}
	}
	return answers
}
