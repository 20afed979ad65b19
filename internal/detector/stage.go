// Package detector binarizes denoised pages and traces their contours.
package detector

import (
	"context"
	"path/filepath"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/stage"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Adaptive threshold parameters of the contour stage.
const (
	AdaptiveBlockSize = 11
	AdaptiveC         = 2
)

// ContourOptions configures RunContours.
type ContourOptions struct {
	InDir        string
	OutDir       string
	ThresholdDir string
}

// RunContours thresholds every image of InDir, stores the threshold image in
// ThresholdDir and the rendered contours in OutDir, both under the input
// file name.
func RunContours(ctx context.Context, opts ContourOptions, sink logsink.Sink) stage.Result {
	if err := utils.EnsureDir(opts.ThresholdDir); err != nil {
		return stage.Fatalf(sink, "failed to create threshold directory: %v", err)
	}
	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}
	paths, err := utils.ListImages(opts.InDir)
	if err != nil {
		return stage.Fatalf(sink, "cannot read input directory: %v", err)
	}

	res := stage.Each(ctx, paths, sink, func(path string) error {
		g, err := utils.LoadGray(path)
		if err != nil {
			return err
		}
		name := filepath.Base(path)
		th := AdaptiveMeanThreshold(g, AdaptiveBlockSize, AdaptiveC)
		if err := utils.SavePNG(filepath.Join(opts.ThresholdDir, name), th); err != nil {
			return err
		}
		contours := FindContours(th)
		canvas := DrawContours(th.Rect.Dx(), th.Rect.Dy(), contours, ContourColor, ContourThickness)
		return utils.SavePNG(filepath.Join(opts.OutDir, name), canvas)
	})
	if res.Err == nil {
		logsink.Infof(sink, "contours extracted from %d images", res.Processed)
	}
	return res
}

// BinarizeOptions configures RunBinarize.
type BinarizeOptions struct {
	InDir  string
	OutDir string
}

// RunBinarize writes the Otsu mask of every image of InDir to OutDir as a
// three-channel image with ink white and paper black.
func RunBinarize(ctx context.Context, opts BinarizeOptions, sink logsink.Sink) stage.Result {
	paths, err := utils.ListImages(opts.InDir)
	if err != nil {
		return stage.Fatalf(sink, "cannot read input directory: %v", err)
	}
	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}
	res := stage.Each(ctx, paths, sink, func(path string) error {
		g, err := utils.LoadGray(path)
		if err != nil {
			return err
		}
		mask, _ := Binarize(g)
		return utils.SavePNG(filepath.Join(opts.OutDir, filepath.Base(path)), utils.GrayToNRGBA(mask))
	})
	if res.Err == nil {
		logsink.Infof(sink, "binarized %d images", res.Processed)
	}
	return res
}
