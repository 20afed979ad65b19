// Package ocr extracts free text from the word regions of thresholded pages.
package ocr

import (
	"context"
	"errors"
	"image"
)

// DefaultLanguage is the recognition language used when none is configured.
const DefaultLanguage = "eng"

// ErrNoBackend is returned by NewEngine when the binary was built without
// an OCR backend.
var ErrNoBackend = errors.New("ocr: no backend compiled in (build with -tags ocr_tesseract)")

// Engine recognizes the text of one image. Engines are not shared: every
// region gets its own instance, closed after use.
type Engine interface {
	Text(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// Factory creates an engine for a recognition language.
type Factory func(language string) (Engine, error)

// NewEngine creates an engine on the compiled-in backend.
func NewEngine(language string) (Engine, error) {
	return newBackend(language)
}
