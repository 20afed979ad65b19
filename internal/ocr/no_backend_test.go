//go:build !ocr_tesseract

package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngineWithoutBackend(t *testing.T) {
	e, err := NewEngine(DefaultLanguage)
	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrNoBackend)
}
