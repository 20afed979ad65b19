// Package pdf turns a scanned answer-sheet booklet into one raster image per page.
package pdf

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/stage"
	"github.com/MeKo-Tech/gabarito/internal/utils"
)

// DefaultDPI is the raster resolution used when none is configured.
const DefaultDPI = 300

const pointsPerInch = 72.0

// Options configures Rasterize.
type Options struct {
	Input  string
	OutDir string
	DPI    float64
	// Pages selects pages using the "1-5,7" range syntax. Empty means all.
	Pages string
	Mode  Mode
}

// Rasterize draws each selected page of the PDF at the requested DPI and
// stores it as page_<N>.png in OutDir. Pages are rendered with poppler when
// available; otherwise the page's embedded scan images are composited and
// scaled to the DPI.
func Rasterize(ctx context.Context, opts Options, sink logsink.Sink) stage.Result {
	pageCount, err := api.PageCountFile(opts.Input)
	if err != nil {
		return stage.Fatalf(sink, "failed to open pdf %s: %v", opts.Input, err)
	}
	logsink.Infof(sink, "pdf has %d pages", pageCount)

	pages, err := parsePageRange(opts.Pages)
	if err != nil {
		return stage.Fatalf(sink, "invalid page range %q: %v", opts.Pages, err)
	}
	if len(pages) == 0 {
		pages = make([]int, pageCount)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	var renderer string
	if opts.Mode != ModeExtract {
		bin, err := lookRenderer()
		switch {
		case err == nil:
			renderer = bin
		case opts.Mode == ModeRender:
			return stage.Fatalf(sink, "%w", ErrNoRenderer)
		default:
			logsink.Warnf(sink, "%s not found, using embedded page images", RendererCommand)
		}
	}

	if err := utils.EnsureDir(opts.OutDir); err != nil {
		return stage.Fatalf(sink, "failed to create output directory: %v", err)
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	widths := pageWidths(opts.Input, sink)

	var extracted map[int][]image.Image
	if sel := inRange(pages, pageCount); renderer == "" && len(sel) > 0 {
		if extracted, err = ExtractImages(opts.Input, sel); err != nil {
			return stage.Fatalf(sink, "failed to read page images: %v", err)
		}
	}

	var res stage.Result
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		if page < 1 || page > pageCount {
			logsink.Warnf(sink, "page %d out of range (1-%d)", page, pageCount)
			continue
		}
		path := filepath.Join(opts.OutDir, utils.PageFileName(page))

		if renderer != "" {
			err := renderPage(ctx, renderer, opts.Input, page, dpi, path)
			if err == nil {
				logsink.Infof(sink, "rendered page %d to %s", page, path)
				res.Processed++
				continue
			}
			if ctx.Err() != nil {
				res.Err = ctx.Err()
				return res
			}
			logsink.Warnf(sink, "page %d: %v, trying embedded images", page, err)
			one, xerr := ExtractImages(opts.Input, []int{page})
			if xerr != nil {
				logsink.Errorf(sink, "page %d: %v", page, xerr)
				res.Failed++
				continue
			}
			if extracted == nil {
				extracted = make(map[int][]image.Image)
			}
			extracted[page] = one[page]
		}

		img := composite(extracted[page])
		if img == nil {
			logsink.Errorf(sink, "page %d: no decodable page image, skipping", page)
			res.Failed++
			continue
		}
		if w, ok := widths[page]; ok {
			img = scaleToDPI(img, w, dpi)
		}
		if err := utils.SavePNG(path, img); err != nil {
			logsink.Errorf(sink, "page %d: %v", page, err)
			res.Failed++
			continue
		}
		logsink.Infof(sink, "saved page %d to %s", page, path)
		res.Processed++
	}
	return res
}

func inRange(pages []int, count int) []int {
	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if p >= 1 && p <= count {
			out = append(out, p)
		}
	}
	return out
}

// pageWidths returns the media box width in points per 1-based page.
// Without dimensions pages keep their native resolution.
func pageWidths(input string, sink logsink.Sink) map[int]float64 {
	dims, err := api.PageDimsFile(input)
	if err != nil {
		logsink.Warnf(sink, "page dimensions unavailable, keeping native resolution: %v", err)
		return nil
	}
	out := make(map[int]float64, len(dims))
	for i, d := range dims {
		if d.Width > 0 {
			out[i+1] = d.Width
		}
	}
	return out
}

func scaleToDPI(img image.Image, widthPts, dpi float64) image.Image {
	b := img.Bounds()
	targetW := int(math.Round(widthPts / pointsPerInch * dpi))
	if targetW <= 0 || targetW == b.Dx() {
		return img
	}
	targetH := int(math.Round(float64(b.Dy()) * float64(targetW) / float64(b.Dx())))
	if targetH <= 0 {
		return img
	}
	return imaging.Resize(img, targetW, targetH, imaging.Lanczos)
}

// ExtractImages extracts the embedded images of the selected pages (all when
// pages is empty), grouped by 1-based page number.
func ExtractImages(filename string, pages []int) (map[int][]image.Image, error) {
	tempDir, err := os.MkdirTemp("", "gabarito-extract-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var pageStrings []string
	for _, p := range pages {
		pageStrings = append(pageStrings, strconv.Itoa(p))
	}

	if err := api.ExtractImagesFile(filename, tempDir, pageStrings, nil); err != nil {
		return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return collectExtractedImages(tempDir, base)
}

// collectExtractedImages groups the images in dir by page number. Names
// that carry no page number or fail to decode are ignored.
func collectExtractedImages(dir, base string) (map[int][]image.Image, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	result := make(map[int][]image.Image)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		page, ok := parsePageFromFilename(e.Name(), base)
		if !ok {
			continue
		}
		img, _, err := utils.LoadImage(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		result[page] = append(result[page], img)
	}
	return result, nil
}

var extractedNameRe = regexp.MustCompile(`_(\d+)_[^_]+\.[A-Za-z0-9]+$`)

// parsePageFromFilename reads the page number from names written by the
// extractor, "<base>_<page>_<image>.<ext>" or "page_<page>_<image>.<ext>".
func parsePageFromFilename(filename, base string) (int, bool) {
	var rest string
	switch {
	case base != "" && strings.HasPrefix(filename, base+"_"):
		rest = strings.TrimPrefix(filename, base+"_")
	case strings.HasPrefix(filename, "page_"):
		rest = strings.TrimPrefix(filename, "page_")
	default:
		m := extractedNameRe.FindStringSubmatch(filename)
		if m == nil {
			return 0, false
		}
		rest = m[1] + "_"
	}
	digits, _, ok := strings.Cut(rest, "_")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parsePageRange parses a page range string like "1-5" or "1,3,5".
func parsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}
	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if from, to, ok := strings.Cut(part, "-"); ok {
		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", from)
		}
		end, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", to)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}
	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	return []int{page}, nil
}
