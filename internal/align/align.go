// Package align registers scanned pages onto a reference template with
// ORB features and a RANSAC homography.
package align

import (
	"context"
	"fmt"
	"image"
	"path/filepath"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/stage"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

const (
	// MaxFeatures bounds the keypoints detected per image.
	MaxFeatures = 800
	// GoodMatchFraction is the share of best matches kept for estimation.
	GoodMatchFraction = 0.10
)

// Aligner warps images into the frame of a reference image.
type Aligner struct {
	ref     *image.NRGBA
	refKps  []Keypoint
	refDesc []Descriptor
	orb     *ORB
	ransac  RANSAC
}

// NewAligner precomputes the reference features.
func NewAligner(ref *image.NRGBA) *Aligner {
	orb := NewORB(MaxFeatures)
	kps, desc := orb.DetectAndCompute(utils.ToGray(ref))
	return &Aligner{ref: ref, refKps: kps, refDesc: desc, orb: orb, ransac: DefaultRANSAC()}
}

// Align estimates the homography from img to the reference and returns img
// warped to the reference size.
func (a *Aligner) Align(img *image.NRGBA) (*image.NRGBA, Homography, error) {
	kps, desc := a.orb.DetectAndCompute(utils.ToGray(img))
	matches := BestMatches(MatchHamming(desc, a.refDesc), GoodMatchFraction)
	if len(matches) < 4 {
		return nil, Homography{}, fmt.Errorf("%w: %d usable of %d detected", ErrTooFewMatches, len(matches), len(kps))
	}

	src := make([]utils.Point, len(matches))
	dst := make([]utils.Point, len(matches))
	for i, m := range matches {
		src[i] = utils.Point{X: kps[m.Query].X, Y: kps[m.Query].Y}
		dst[i] = utils.Point{X: a.refKps[m.Train].X, Y: a.refKps[m.Train].Y}
	}
	h, _, err := a.ransac.FindHomography(src, dst)
	if err != nil {
		return nil, Homography{}, err
	}

	b := a.ref.Rect
	out, ok := WarpPerspective(img, h, b.Dx(), b.Dy())
	if !ok {
		return nil, Homography{}, fmt.Errorf("degenerate homography %v", h)
	}
	return out, h, nil
}

// Options configures Run.
type Options struct {
	InDir     string
	OutDir    string
	Reference string
}

// Run aligns every page image in InDir and writes the result under the same
// name in OutDir. An unreadable reference aborts the stage.
func Run(ctx context.Context, opts Options, sink logsink.Sink) stage.Result {
	ref, err := utils.LoadColor(opts.Reference)
	if err != nil {
		return stage.Fatalf(sink, "error loading reference image from path %s: %v", opts.Reference, err)
	}
	paths, err := utils.ListImages(opts.InDir)
	if err != nil {
		return stage.Fatalf(sink, "cannot read input directory: %v", err)
	}
	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}

	aligner := NewAligner(ref)
	res := stage.Each(ctx, paths, sink, func(path string) error {
		logsink.Infof(sink, "processing file: %s", path)
		img, err := utils.LoadColor(path)
		if err != nil {
			return err
		}
		aligned, _, err := aligner.Align(img)
		if err != nil {
			return fmt.Errorf("error aligning image: %w", err)
		}
		return utils.SavePNG(filepath.Join(opts.OutDir, filepath.Base(path)), aligned)
	})
	if res.Err == nil {
		logsink.Infof(sink, "all images have been aligned and saved")
	}
	return res
}
