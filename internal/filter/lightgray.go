package filter

import (
	"image"
	"math"
)

// GrayParams are the per-image limits used by RemoveLightGray.
type GrayParams struct {
	Tolerance    int
	MinIntensity int
}

// EstimateGrayParams derives the removal limits from the image statistics:
// tolerance = (mean_diff + stdev_diff + 6) * 2 and
// min_intensity = mean_intensity - stdev_intensity, where intensity is the
// integer channel mean and diff covers the three pairwise channel distances.
func EstimateGrayParams(img *image.NRGBA) GrayParams {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	var sumI, sumI2, sumD, sumD2 float64
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			r, g, b := int(row[x*4]), int(row[x*4+1]), int(row[x*4+2])
			in := float64((r + g + b) / 3)
			sumI += in
			sumI2 += in * in
			for _, d := range channelDiffs(r, g, b) {
				fd := float64(d)
				sumD += fd
				sumD2 += fd * fd
			}
		}
	}
	n := float64(w * h)
	if n == 0 {
		return GrayParams{}
	}
	meanI := sumI / n
	stdI := math.Sqrt(math.Max(sumI2/n-meanI*meanI, 0))
	meanD := sumD / (3 * n)
	stdD := math.Sqrt(math.Max(sumD2/(3*n)-meanD*meanD, 0))
	return GrayParams{
		Tolerance:    int((meanD + stdD + 6) * 2),
		MinIntensity: int(meanI - stdI),
	}
}

// RemoveLightGray whitens, in place, every pixel that is both nearly
// achromatic and brighter than the minimum intensity.
func RemoveLightGray(img *image.NRGBA, p GrayParams) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := range w {
			r, g, b := int(row[x*4]), int(row[x*4+1]), int(row[x*4+2])
			d := channelDiffs(r, g, b)
			if d[0] < p.Tolerance && d[1] < p.Tolerance && d[2] < p.Tolerance && (r+g+b)/3 > p.MinIntensity {
				row[x*4], row[x*4+1], row[x*4+2] = 255, 255, 255
			}
		}
	}
}

func channelDiffs(r, g, b int) [3]int {
	return [3]int{absInt(r - g), absInt(r - b), absInt(g - b)}
}
