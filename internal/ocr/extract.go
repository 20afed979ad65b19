package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

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
	Language    string
	// NewEngine defaults to NewEngine.
	NewEngine Factory
}

// WordsFileName names the output of region name on the page image file.
func WordsFileName(imageFile, name string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(name)
	return utils.TrimExt(filepath.Base(imageFile)) + "_region_" + safe + "_words.txt"
}

// Recognize runs a fresh engine over the crop of r on g. The returned text
// is NFC-normalized.
func Recognize(ctx context.Context, g *image.Gray, r region.Region, language string, newEngine Factory) (string, error) {
	rect := r.PixelBounds(g.Rect.Dx(), g.Rect.Dy()).Rect().Add(g.Rect.Min)
	crop := utils.CropImageRect(g, rect)
	if crop == nil || crop.Rect.Empty() {
		return "", fmt.Errorf("region %s: empty crop", r.Name)
	}
	engine, err := newEngine(language)
	if err != nil {
		return "", fmt.Errorf("region %s: could not initialize OCR engine: %w", r.Name, err)
	}
	defer func() { _ = engine.Close() }()

	text, err := engine.Text(ctx, crop)
	if err != nil {
		return "", fmt.Errorf("region %s: %w", r.Name, err)
	}
	return norm.NFC.String(text), nil
}

// Run extracts the text of every word region on every image of InDir.
// Failures on one region are logged and do not stop the others.
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
		return stage.Fatalf(sink, "failed to load regions from %s: %v", opts.RegionsFile, err)
	}
	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}
	paths, err := utils.ListExt(opts.InDir, ".png")
	if err != nil {
		return stage.Fatalf(sink, "cannot read input directory: %v", err)
	}
	language := opts.Language
	if language == "" {
		language = DefaultLanguage
	}
	newEngine := opts.NewEngine
	if newEngine == nil {
		newEngine = NewEngine
	}
	words := region.Words(regions)

	return stage.Each(ctx, paths, sink, func(path string) error {
		g, err := utils.LoadGray(path)
		if err != nil {
			return err
		}
		for _, r := range words {
			text, err := Recognize(ctx, g, r, language, newEngine)
			if err != nil {
				logsink.Errorf(sink, "%s: %v", filepath.Base(path), err)
				continue
			}
			out := filepath.Join(opts.OutDir, WordsFileName(path, r.Name))
			content := "Extracted Words for " + r.Name + ":\n" + text
			if err := os.WriteFile(out, []byte(content), 0o600); err != nil {
				logsink.Errorf(sink, "failed to save words: %v", err)
				continue
			}
			logsink.Infof(sink, "extracted words saved to %s", out)
		}
		return nil
	})
}
