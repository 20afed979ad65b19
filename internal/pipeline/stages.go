package pipeline

import (
	"context"

	"github.com/MeKo-Tech/gabarito/internal/aggregate"
	"github.com/MeKo-Tech/gabarito/internal/align"
	"github.com/MeKo-Tech/gabarito/internal/detector"
	"github.com/MeKo-Tech/gabarito/internal/filter"
	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/ocr"
	"github.com/MeKo-Tech/gabarito/internal/omr"
	"github.com/MeKo-Tech/gabarito/internal/pdf"
	"github.com/MeKo-Tech/gabarito/internal/stage"
)

// Standard returns the eight grading stages wired to the workspace layout.
func Standard(cfg Config) []stage.Stage {
	l := Layout{Root: cfg.Workspace}
	mk := func(name string, run stage.Func) stage.Stage {
		return stage.Stage{Name: name, Enabled: !cfg.Skip[name], Run: run}
	}
	return []stage.Stage{
		mk(StageRasterize, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return pdf.Rasterize(ctx, pdf.Options{Input: cfg.PDF, OutDir: l.Path(DirRaw), DPI: cfg.DPI, Pages: cfg.Pages, Mode: cfg.Raster}, sink)
		}),
		mk(StageAlign, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return align.Run(ctx, align.Options{InDir: l.Path(DirRaw), OutDir: l.Path(DirAligned), Reference: cfg.Reference}, sink)
		}),
		mk(StageDenoise, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return filter.Run(ctx, filter.Options{InDir: l.Path(DirAligned), OutDir: l.Path(DirDenoised)}, sink)
		}),
		mk(StageContours, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return detector.RunContours(ctx, detector.ContourOptions{
				InDir:        l.Path(DirDenoised),
				OutDir:       l.Path(DirContours),
				ThresholdDir: l.Path(DirThreshold),
			}, sink)
		}),
		mk(StageBinarize, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return detector.RunBinarize(ctx, detector.BinarizeOptions{InDir: l.Path(DirDenoised), OutDir: l.Path(DirBinarized)}, sink)
		}),
		mk(StageAnswers, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return omr.Run(ctx, omr.Options{InDir: l.Path(DirBinarized), OutDir: l.Path(DirAnswers), RegionsFile: cfg.Regions}, sink)
		}),
		mk(StageWords, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return ocr.Run(ctx, ocr.Options{
				InDir:       l.Path(DirThreshold),
				OutDir:      l.Path(DirWords),
				RegionsFile: cfg.Regions,
				Language:    cfg.Language,
				NewEngine:   cfg.NewEngine,
			}, sink)
		}),
		mk(StageAggregate, func(ctx context.Context, sink logsink.Sink) stage.Result {
			return aggregate.Run(ctx, aggregate.Options{InDir: l.Path(DirAnswers), DestDir: l.Path(DirResult)}, sink)
		}),
	}
}
