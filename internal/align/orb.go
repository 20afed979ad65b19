package align

import (
	"image"
	"math"
	"math/bits"
	"sort"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Keypoint is an oriented feature location in base image coordinates.
type Keypoint struct {
	X, Y     float64
	Angle    float64 // radians
	Response float64
	Octave   int
}

// Descriptor is a 256-bit binary feature descriptor.
type Descriptor [32]byte

// Hamming returns the number of differing bits between a and b.
func Hamming(a, b *Descriptor) int {
	n := 0
	for i := 0; i < 32; i += 8 {
		x := uint64(a[i]) | uint64(a[i+1])<<8 | uint64(a[i+2])<<16 | uint64(a[i+3])<<24 |
			uint64(a[i+4])<<32 | uint64(a[i+5])<<40 | uint64(a[i+6])<<48 | uint64(a[i+7])<<56
		y := uint64(b[i]) | uint64(b[i+1])<<8 | uint64(b[i+2])<<16 | uint64(b[i+3])<<24 |
			uint64(b[i+4])<<32 | uint64(b[i+5])<<40 | uint64(b[i+6])<<48 | uint64(b[i+7])<<56
		n += bits.OnesCount64(x ^ y)
	}
	return n
}

// ORB detects oriented FAST corners over an image pyramid and describes
// them with steered BRIEF.
type ORB struct {
	MaxFeatures int
	Levels      int
	ScaleFactor float64
	// EdgeThreshold is the border, in pixels of each level, where no
	// features are detected.
	EdgeThreshold int
	FastThreshold int
}

// NewORB returns a detector with the usual pyramid settings.
func NewORB(maxFeatures int) *ORB {
	return &ORB{
		MaxFeatures:   maxFeatures,
		Levels:        8,
		ScaleFactor:   1.2,
		EdgeThreshold: 31,
		FastThreshold: fastThreshold,
	}
}

const (
	patchSize     = 31
	halfPatch     = patchSize / 2
	harrisBlock   = 7
	harrisK       = 0.04
	descBlurSigma = 2.0
)

type levelFeature struct {
	kp Keypoint
	x  int
	y  int
}

// DetectAndCompute returns keypoints and their descriptors, index aligned.
func (o *ORB) DetectAndCompute(g *image.Gray) ([]Keypoint, []Descriptor) {
	if o.MaxFeatures <= 0 {
		return nil, nil
	}
	quota := o.levelQuota()

	var kps []Keypoint
	var descs []Descriptor
	scale := 1.0
	for level := range o.Levels {
		if level > 0 {
			scale *= o.ScaleFactor
		}
		lw := int(math.Round(float64(g.Rect.Dx()) / scale))
		lh := int(math.Round(float64(g.Rect.Dy()) / scale))
		if lw <= 2*o.EdgeThreshold || lh <= 2*o.EdgeThreshold {
			break
		}
		var img *image.Gray
		if level == 0 {
			img = g
		} else {
			img = utils.ToGray(imaging.Resize(g, lw, lh, imaging.Linear))
		}

		feats := o.detectLevel(img, quota[level], level, scale)
		if len(feats) == 0 {
			continue
		}
		smooth := utils.ToGray(imaging.Blur(img, descBlurSigma))
		for _, f := range feats {
			kps = append(kps, f.kp)
			descs = append(descs, describe(smooth, f.x, f.y, f.kp.Angle))
		}
	}
	return kps, descs
}

// levelQuota spreads MaxFeatures over the levels in geometric proportion
// to each level's area scale.
func (o *ORB) levelQuota() []int {
	quota := make([]int, o.Levels)
	factor := 1.0 / o.ScaleFactor
	desired := float64(o.MaxFeatures) * (1 - factor) / (1 - math.Pow(factor, float64(o.Levels)))
	sum := 0
	for l := 0; l < o.Levels-1; l++ {
		quota[l] = int(math.Round(desired))
		sum += quota[l]
		desired *= factor
	}
	quota[o.Levels-1] = max(o.MaxFeatures-sum, 0)
	return quota
}

func (o *ORB) detectLevel(img *image.Gray, want, level int, scale float64) []levelFeature {
	if want <= 0 {
		return nil
	}
	corners := detectFAST(img, o.FastThreshold, o.EdgeThreshold)
	if len(corners) == 0 {
		return nil
	}

	sort.SliceStable(corners, func(i, j int) bool { return corners[i].score > corners[j].score })
	if len(corners) > 2*want {
		corners = corners[:2*want]
	}

	feats := make([]levelFeature, len(corners))
	for i, c := range corners {
		feats[i] = levelFeature{
			x: c.x,
			y: c.y,
			kp: Keypoint{
				X:        float64(c.x) * scale,
				Y:        float64(c.y) * scale,
				Response: harrisResponse(img, c.x, c.y),
				Octave:   level,
			},
		}
	}
	sort.SliceStable(feats, func(i, j int) bool { return feats[i].kp.Response > feats[j].kp.Response })
	if len(feats) > want {
		feats = feats[:want]
	}
	for i := range feats {
		feats[i].kp.Angle = intensityAngle(img, feats[i].x, feats[i].y)
	}
	return feats
}

// harrisResponse scores a corner with the Harris measure over a 7x7 block
// of Sobel gradients.
func harrisResponse(g *image.Gray, cx, cy int) float64 {
	r := harrisBlock / 2
	var a, b, c float64
	at := func(x, y int) float64 { return float64(g.Pix[y*g.Stride+x]) }
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx := (at(x+1, y)-at(x-1, y))*2 + (at(x+1, y-1) - at(x-1, y-1)) + (at(x+1, y+1) - at(x-1, y+1))
			dy := (at(x, y+1)-at(x, y-1))*2 + (at(x-1, y+1) - at(x-1, y-1)) + (at(x+1, y+1) - at(x+1, y-1))
			a += dx * dx
			b += dy * dy
			c += dx * dy
		}
	}
	s := 1.0 / (4 * harrisBlock * 255.0)
	s4 := s * s * s * s
	return (a*b - c*c - harrisK*(a+b)*(a+b)) * s4
}

// umax[v] is the half width of the circular patch at row offset v.
var umax = func() [halfPatch + 1]int {
	var u [halfPatch + 1]int
	for v := 0; v <= halfPatch; v++ {
		u[v] = int(math.Floor(math.Sqrt(float64(halfPatch*halfPatch - v*v))))
	}
	return u
}()

// intensityAngle orients a keypoint along the vector from its center to the
// intensity centroid of the circular patch.
func intensityAngle(g *image.Gray, cx, cy int) float64 {
	var m01, m10 int
	for v := -halfPatch; v <= halfPatch; v++ {
		d := umax[absInt(v)]
		row := (cy+v)*g.Stride + cx
		for u := -d; u <= d; u++ {
			p := int(g.Pix[row+u])
			m10 += u * p
			m01 += v * p
		}
	}
	return math.Atan2(float64(m01), float64(m10))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
