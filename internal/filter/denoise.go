// Package filter removes scan noise from aligned pages.
package filter

import (
	"context"
	"image"
	"path/filepath"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/stage"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Denoise smooths img with the bilateral filter and then whitens faint
// gray pixels using limits estimated from the smoothed image.
func Denoise(img *image.NRGBA) *image.NRGBA {
	out := DefaultBilateral.Apply(img)
	RemoveLightGray(out, EstimateGrayParams(out))
	return out
}

// Options configures Run.
type Options struct {
	InDir  string
	OutDir string
}

// Run denoises every image of InDir into OutDir under the same name.
func Run(ctx context.Context, opts Options, sink logsink.Sink) stage.Result {
	paths, err := utils.ListImages(opts.InDir)
	if err != nil {
		return stage.Fatalf(sink, "cannot read input directory: %v", err)
	}
	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}
	res := stage.Each(ctx, paths, sink, func(path string) error {
		img, err := utils.LoadColor(path)
		if err != nil {
			return err
		}
		return utils.SavePNG(filepath.Join(opts.OutDir, filepath.Base(path)), Denoise(img))
	})
	if res.Err == nil {
		logsink.Infof(sink, "noise filter applied to %d images", res.Processed)
	}
	return res
}
