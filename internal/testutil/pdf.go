package testutil

import (
	"fmt"
	"image"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

// WritePDF builds a PDF with one embedded image per page.
func WritePDF(t *testing.T, path string, pages ...image.Image) {
	t.Helper()
	require.NotEmpty(t, pages)

	dir := t.TempDir()
	files := make([]string, len(pages))
	for i, p := range pages {
		files[i] = filepath.Join(dir, fmt.Sprintf("scan_%03d.png", i+1))
		SaveImage(t, p, files[i])
	}
	require.NoError(t, EnsureDir(filepath.Dir(path)))
	require.NoError(t, api.ImportImagesFile(files, path, nil, nil), "Failed to build PDF %s", path)
}
