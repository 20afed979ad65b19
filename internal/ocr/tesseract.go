//go:build ocr_tesseract

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

type tesseractEngine struct {
	client *gosseract.Client
}

func newBackend(language string) (Engine, error) {
	c := gosseract.NewClient()
	if err := c.SetLanguage(language); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("set language %q: %w", language, err)
	}
	return &tesseractEngine{client: c}, nil
}

func (e *tesseractEngine) Text(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

func (e *tesseractEngine) Close() error { return e.client.Close() }
