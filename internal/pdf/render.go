package pdf

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// RendererCommand is the poppler tool used to draw whole pages.
const RendererCommand = "pdftoppm"

// Mode selects how page rasters are produced.
type Mode int

const (
	// ModeAuto renders through poppler when it is installed and falls back
	// to the embedded page images otherwise.
	ModeAuto Mode = iota
	// ModeRender requires poppler.
	ModeRender
	// ModeExtract only uses the embedded page images.
	ModeExtract
)

func (m Mode) String() string {
	switch m {
	case ModeRender:
		return "render"
	case ModeExtract:
		return "extract"
	default:
		return "auto"
	}
}

// ParseMode maps "auto", "render" or "extract" to a Mode. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "render":
		return ModeRender, nil
	case "extract":
		return ModeExtract, nil
	}
	return ModeAuto, fmt.Errorf("unknown rasterize mode %q", s)
}

// ErrNoRenderer is returned when ModeRender is requested without poppler.
var ErrNoRenderer = errors.New(RendererCommand + " not found in PATH")

// lookRenderer is replaced in tests.
var lookRenderer = func() (string, error) { return exec.LookPath(RendererCommand) }

// renderPage draws one page at dpi into dst (a PNG path) with poppler. The
// whole page is drawn, vector content and text included.
func renderPage(ctx context.Context, bin, input string, page int, dpi float64, dst string) error {
	prefix := strings.TrimSuffix(dst, filepath.Ext(dst))
	n := strconv.Itoa(page)
	cmd := exec.CommandContext(ctx, bin, //nolint:gosec // G204: fixed tool, arguments are not shell-interpreted
		"-png", "-singlefile",
		"-r", strconv.FormatFloat(dpi, 'f', -1, 64),
		"-f", n, "-l", n,
		input, prefix)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("%s page %d: %w", RendererCommand, page, err)
		}
		return fmt.Errorf("%s page %d: %w: %s", RendererCommand, page, err, msg)
	}
	if _, err := os.Stat(prefix + ".png"); err != nil {
		return fmt.Errorf("%s page %d: no output: %w", RendererCommand, page, err)
	}
	if prefix+".png" != dst {
		return os.Rename(prefix+".png", dst)
	}
	return nil
}

// composite stacks the images of one page top to bottom on a white canvas
// as wide as the widest of them. Scanners that split a page into strips
// store them in reading order.
func composite(imgs []image.Image) image.Image {
	switch len(imgs) {
	case 0:
		return nil
	case 1:
		return imgs[0]
	}
	width, height := 0, 0
	for _, img := range imgs {
		b := img.Bounds()
		width = max(width, b.Dx())
		height += b.Dy()
	}
	canvas := imaging.New(width, height, color.White)
	y := 0
	for _, img := range imgs {
		canvas = imaging.Paste(canvas, img, image.Pt(0, y))
		y += img.Bounds().Dy()
	}
	return canvas
}
