package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var pageKeyRe = regexp.MustCompile(`page_(\d+)`)

// PageNumber extracts N from the first "page_<N>" occurrence in a file name.
func PageNumber(name string) (int, bool) {
	m := pageKeyRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// PageFileName returns the canonical raster name for a 1-based page index.
func PageFileName(page int) string {
	return fmt.Sprintf("page_%d.png", page)
}

// SortByPage orders names by their page number. Names without a page key
// sort after all numbered names, by name.
func SortByPage(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		na, okA := PageNumber(a)
		nb, okB := PageNumber(b)
		switch {
		case okA && okB:
			if na != nb {
				return na - nb
			}
			return strings.Compare(a, b)
		case okA:
			return -1
		case okB:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})
}

// ListFiles returns the full paths of regular files in dir accepted by keep,
// ordered by page number.
func ListFiles(dir string, keep func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	SortByPage(names)
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

// ListImages returns the supported images in dir ordered by page number.
func ListImages(dir string) ([]string, error) {
	return ListFiles(dir, IsSupportedImage)
}

// ListExt returns files in dir with the given extension ordered by page number.
func ListExt(dir, ext string) ([]string, error) {
	return ListFiles(dir, func(name string) bool {
		return strings.EqualFold(filepath.Ext(name), ext)
	})
}

// TrimExt strips the final extension from a file name.
func TrimExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
