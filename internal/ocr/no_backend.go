//go:build !ocr_tesseract

package ocr

func newBackend(string) (Engine, error) { return nil, ErrNoBackend }
