package pipeline

import (
	"errors"

	"github.com/MeKo-Tech/gabarito/internal/ocr"
	"github.com/MeKo-Tech/gabarito/internal/pdf"
)

// Stage names, in execution order.
const (
	StageRasterize = "rasterize"
	StageAlign     = "align"
	StageDenoise   = "denoise"
	StageContours  = "contours"
	StageBinarize  = "binarize"
	StageAnswers   = "answers"
	StageWords     = "words"
	StageAggregate = "aggregate"
)

// StageNames lists every stage in execution order.
var StageNames = []string{
	StageRasterize, StageAlign, StageDenoise, StageContours,
	StageBinarize, StageAnswers, StageWords, StageAggregate,
}

// Config holds the inputs of a grading run.
type Config struct {
	PDF       string
	Reference string
	Regions   string
	DPI       float64
	Pages     string
	// Raster chooses between poppler rendering and embedded page images.
	Raster    pdf.Mode
	Workspace string
	Language  string
	// Skip disables stages by name.
	Skip map[string]bool
	// NewEngine overrides the OCR engine factory.
	NewEngine ocr.Factory
}

// DefaultConfig returns a config rooted at the current directory.
func DefaultConfig() Config {
	return Config{
		DPI:       pdf.DefaultDPI,
		Workspace: ".",
		Language:  ocr.DefaultLanguage,
		Skip:      map[string]bool{},
	}
}

// Validate checks that every enabled stage has its inputs configured.
func (c Config) Validate() error {
	var errs []error
	enabled := func(name string) bool { return !c.Skip[name] }
	if enabled(StageRasterize) && c.PDF == "" {
		errs = append(errs, errors.New("a PDF input is required to rasterize"))
	}
	if enabled(StageAlign) && c.Reference == "" {
		errs = append(errs, errors.New("a reference image is required to align"))
	}
	if (enabled(StageAnswers) || enabled(StageWords)) && c.Regions == "" {
		errs = append(errs, errors.New("a region file is required to read answers or words"))
	}
	if c.DPI <= 0 {
		errs = append(errs, errors.New("dpi must be positive"))
	}
	return errors.Join(errs...)
}
