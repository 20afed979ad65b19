package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/gabarito/internal/region"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Inspect and convert region definition files",
	Long: `Region definition files list the named rectangles of an answer sheet,
one per line in the form "name|x1 y1 x2 y2 rows columns vertical word number".
The same definitions can be authored as YAML (.yaml or .yml).`,
}

var regionsConvertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a region file between the text and YAML formats",
	Long: `Convert a region file. The format of each side is chosen by its
extension: .yaml and .yml are YAML, anything else is the text format.

Examples:
  omr regions convert regions.txt regions.yaml
  omr regions convert regions.yaml regions.txt`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		regions, err := readRegionFile(args[0])
		if err != nil {
			return err
		}
		if err := writeRegionFile(args[1], regions); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Converted %d regions to %s\n", len(regions), args[1])
		return nil
	},
}

var regionsShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print regions in page pixels and screen coordinates",
	Long: `Print every region with its pixel crop for a page of --width x --height
pixels and its overlay rectangle when the page is drawn at the origin with the
same size.

Examples:
  omr regions show regions.txt --width 2480 --height 3508`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		width, _ := cmd.Flags().GetInt("width")
		height, _ := cmd.Flags().GetInt("height")
		if width <= 0 || height <= 0 {
			return fmt.Errorf("invalid page size %dx%d", width, height)
		}
		regions, err := readRegionFile(args[0])
		if err != nil {
			return err
		}

		vp := region.Viewport{Width: float64(width), Height: float64(height)}
		out := cmd.OutOrStdout()
		for _, r := range regions {
			b := r.PixelBounds(width, height)
			s := region.Overlay(r, vp)
			kind := "answers"
			switch {
			case r.IsWord:
				kind = "word"
			case r.IsNumber:
				kind = "number"
			}
			_, _ = fmt.Fprintf(out, "%s [%s] %dx%d questions=%d choices=%d crop=%d,%d+%dx%d overlay=(%.0f,%.0f)-(%.0f,%.0f) grid=%d\n",
				r.Name, kind, r.Rows, r.Columns, r.Alternatives(), r.Choices(),
				b.X, b.Y, b.Width, b.Height,
				s.Min.X, s.Min.Y, s.Max.X, s.Max.Y, len(s.Grid))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
	regionsCmd.AddCommand(regionsConvertCmd, regionsShowCmd)
	regionsShowCmd.Flags().Int("width", 0, "page width in pixels")
	regionsShowCmd.Flags().Int("height", 0, "page height in pixels")
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func readRegionFile(path string) ([]region.Region, error) {
	if !isYAML(path) {
		return region.Load(path)
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: region file path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read region file: %w", err)
	}
	regions, err := region.DecodeYAML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return regions, nil
}

func writeRegionFile(path string, regions []region.Region) error {
	if !isYAML(path) {
		return region.Save(path, regions)
	}
	var buf bytes.Buffer
	if err := region.EncodeYAML(&buf, regions); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
