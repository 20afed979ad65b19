// Package omr reads marked answers from binarized pages.
package omr

import (
	"context"
	"path/filepath"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/region"
	"github.com/MeKo-Tech/gabarito/internal/stage"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// Options configures Run.
type Options struct {
	InDir       string
	OutDir      string
	RegionsFile string
}

// Run reads the answers of every image in InDir and writes one answer file
// per page to OutDir.
func Run(ctx context.Context, opts Options, sink logsink.Sink) stage.Result {
	regions, err := region.Load(opts.RegionsFile)
	if err != nil && region.Usable(regions, err) {
		logsink.Warnf(sink, "%v; keeping the %d regions before it", err, len(regions))
		err = nil
	}
	if err == nil && len(regions) == 0 {
		err = region.ErrNoRegions
	}
	if err != nil {
		return stage.Fatalf(sink, "failed to load answer areas from %s: %v", opts.RegionsFile, err)
	}
	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}
	paths, err := utils.ListExt(opts.InDir, ".png")
	if err != nil {
		return stage.Fatalf(sink, "cannot read input directory: %v", err)
	}

	return stage.Each(ctx, paths, sink, func(path string) error {
		g, err := utils.LoadGray(path)
		if err != nil {
			return err
		}
		answers := ReadAnswers(g, regions, sink)
		out := filepath.Join(opts.OutDir, filepath.Base(path)+FileSuffix)
		if err := SaveAnswers(out, answers); err != nil {
			return err
		}
		observeAnswers(answers)
		logsink.Infof(sink, "answers saved to %s", out)
		return nil
	})
}
