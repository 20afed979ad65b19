package align

import (
	"math"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Homography is a row-major 3x3 projective transform.
type Homography [9]float64

// Identity is the transform that leaves points unchanged.
var Identity = Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}

// Apply maps (x, y) through h.
func (h Homography) Apply(x, y float64) (float64, float64) {
	denom := h[6]*x + h[7]*y + h[8]
	if denom == 0 {
		return math.Inf(1), math.Inf(1)
	}
	return (h[0]*x + h[1]*y + h[2]) / denom, (h[3]*x + h[4]*y + h[5]) / denom
}

// Mul returns h * o, the transform applying o first.
func (h Homography) Mul(o Homography) Homography {
	var r Homography
	for i := range 3 {
		for j := range 3 {
			r[i*3+j] = h[i*3]*o[j] + h[i*3+1]*o[3+j] + h[i*3+2]*o[6+j]
		}
	}
	return r
}

// Inverse returns the inverse transform, or false when h is singular.
func (h Homography) Inverse() (Homography, bool) {
	a, b, c := h[0], h[1], h[2]
	d, e, f := h[3], h[4], h[5]
	g, k, l := h[6], h[7], h[8]
	det := a*(e*l-f*k) - b*(d*l-f*g) + c*(d*k-e*g)
	if math.Abs(det) < 1e-12 {
		return Homography{}, false
	}
	inv := Homography{
		e*l - f*k, c*k - b*l, b*f - c*e,
		f*g - d*l, a*l - c*g, c*d - a*f,
		d*k - e*g, b*g - a*k, a*e - b*d,
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv, true
}

// computeHomography computes H mapping p[i] -> q[i] exactly from four
// correspondences, with h22 fixed to 1.
func computeHomography(p, q [4]utils.Point) (Homography, bool) {
	var A [8][8]float64
	var b [8]float64
	for i := range 4 {
		X, Y := p[i].X, p[i].Y
		x, y := q[i].X, q[i].Y
		r := 2 * i
		A[r] = [8]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x}
		b[r] = x
		A[r+1] = [8]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y}
		b[r+1] = y
	}
	h, ok := solve8x8(A, b)
	if !ok {
		return Homography{}, false
	}
	return Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}, true
}

// fitHomography estimates H from n >= 4 correspondences by linear least
// squares on Hartley-normalized coordinates.
func fitHomography(src, dst []utils.Point) (Homography, bool) {
	if len(src) < 4 || len(src) != len(dst) {
		return Homography{}, false
	}
	ts, okS := normalization(src)
	td, okD := normalization(dst)
	if !okS || !okD {
		return Homography{}, false
	}

	var ata [8][8]float64
	var atb [8]float64
	accumulate := func(row [8]float64, rhs float64) {
		for i := range 8 {
			for j := range 8 {
				ata[i][j] += row[i] * row[j]
			}
			atb[i] += row[i] * rhs
		}
	}
	for i := range src {
		X, Y := ts.Apply(src[i].X, src[i].Y)
		x, y := td.Apply(dst[i].X, dst[i].Y)
		accumulate([8]float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x}, x)
		accumulate([8]float64{0, 0, 0, X, Y, 1, -X * y, -Y * y}, y)
	}
	h, ok := solve8x8(ata, atb)
	if !ok {
		return Homography{}, false
	}
	hn := Homography{h[0], h[1], h[2], h[3], h[4], h[5], h[6], h[7], 1}
	tdInv, ok := td.Inverse()
	if !ok {
		return Homography{}, false
	}
	return scaleToUnit(tdInv.Mul(hn).Mul(ts))
}

// normalization returns the similarity moving pts to their centroid with a
// mean distance of sqrt(2).
func normalization(pts []utils.Point) (Homography, bool) {
	var cx, cy float64
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	cx /= n
	cy /= n
	var mean float64
	for _, p := range pts {
		mean += math.Hypot(p.X-cx, p.Y-cy)
	}
	mean /= n
	if mean < 1e-9 {
		return Homography{}, false
	}
	s := math.Sqrt2 / mean
	return Homography{s, 0, -s * cx, 0, s, -s * cy, 0, 0, 1}, true
}

func scaleToUnit(h Homography) (Homography, bool) {
	if math.Abs(h[8]) < 1e-12 {
		return Homography{}, false
	}
	for i := range h {
		h[i] /= h[8]
	}
	return h, true
}

func solve8x8(a [8][8]float64, b [8]float64) ([8]float64, bool) {
	matrix := a
	vector := b
	for i := range 8 {
		if !pivotAndNormalize(&matrix, &vector, i) {
			return [8]float64{}, false
		}
		eliminateColumn(&matrix, &vector, i)
	}
	return vector, true
}

func pivotAndNormalize(matrix *[8][8]float64, vector *[8]float64, col int) bool {
	pivotRow := col
	maxAbs := math.Abs(matrix[col][col])
	for r := col + 1; r < 8; r++ {
		if v := math.Abs(matrix[r][col]); v > maxAbs {
			maxAbs, pivotRow = v, r
		}
	}
	if maxAbs < 1e-12 {
		return false
	}
	if pivotRow != col {
		matrix[col], matrix[pivotRow] = matrix[pivotRow], matrix[col]
		vector[col], vector[pivotRow] = vector[pivotRow], vector[col]
	}
	div := matrix[col][col]
	for c := col; c < 8; c++ {
		matrix[col][c] /= div
	}
	vector[col] /= div
	return true
}

func eliminateColumn(matrix *[8][8]float64, vector *[8]float64, col int) {
	for r := range 8 {
		if r == col {
			continue
		}
		factor := matrix[r][col]
		if factor == 0 {
			continue
		}
		for c := col; c < 8; c++ {
			matrix[r][c] -= factor * matrix[col][c]
		}
		vector[r] -= factor * vector[col]
	}
}
