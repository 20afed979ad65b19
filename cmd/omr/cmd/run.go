package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/pipeline"
)

// runCmd represents the run command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the grading pipeline",
	Long: `Run every enabled stage in order against the workspace:

  rasterize  PDF pages to Imagens/page_<n>.png
  align      pages to the reference template (ImagensAlinhadas)
  denoise    bilateral smoothing and light-gray removal (ImagensSemRuidos)
  contours   adaptive threshold and contour drawing (ImagemThreshold, Contornos)
  binarize   Otsu binarization (ImagemBinarizadas)
  answers    marked alternatives per region (Respostas)
  words      OCR of word regions (Respostas1)
  aggregate  one line per exam in Resposta/respostas.txt

A stage that aborts stops the run. Stages can be disabled with --skip-<stage>.

Examples:
  omr run --pdf exams.pdf --reference template.png --regions regions.txt
  omr run --regions regions.txt --skip-rasterize --skip-align --skip-words`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		pc := cfg.ToPipelineConfig()
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("invalid run configuration: %w", err)
		}

		sink := logsink.NewSlog(slog.Default(), "component", "pipeline")
		out := cmd.OutOrStdout()
		result := pipeline.Run(cmd.Context(), pipeline.Standard(pc), sink, pipeline.NewConsoleObserver(out))

		t := result.Totals()
		_, _ = fmt.Fprintf(out, "Processed %d items (%d failed, %d warnings, %d errors) in %s\n",
			t.Processed, t.Failed, t.Warnings, t.Errors, result.Duration)
		if result.Err != nil {
			return fmt.Errorf("run aborted: %w", result.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("pdf", "", "scanned answer sheets")
	runCmd.Flags().String("reference", "", "blank template image used for alignment")
	runCmd.Flags().String("regions", "", "region definition file")
	runCmd.Flags().Float64("dpi", 300, "rasterization resolution")
	runCmd.Flags().String("pages", "", "page range to rasterize, e.g. 1-5,7 (default all)")
	runCmd.Flags().String("raster", "auto", "page rasterizer: auto, render (pdftoppm) or extract (embedded images)")
	runCmd.Flags().StringP("workspace", "w", ".", "directory holding the stage directories")
	runCmd.Flags().String("language", "eng", "OCR language for word regions")

	_ = viper.BindPFlag("input.pdf", runCmd.Flags().Lookup("pdf"))
	_ = viper.BindPFlag("input.reference", runCmd.Flags().Lookup("reference"))
	_ = viper.BindPFlag("input.regions", runCmd.Flags().Lookup("regions"))
	_ = viper.BindPFlag("input.dpi", runCmd.Flags().Lookup("dpi"))
	_ = viper.BindPFlag("input.pages", runCmd.Flags().Lookup("pages"))
	_ = viper.BindPFlag("input.raster", runCmd.Flags().Lookup("raster"))
	_ = viper.BindPFlag("workspace.root", runCmd.Flags().Lookup("workspace"))
	_ = viper.BindPFlag("ocr.language", runCmd.Flags().Lookup("language"))

	for _, name := range pipeline.StageNames {
		flag := "skip-" + name
		runCmd.Flags().Bool(flag, false, "skip the "+name+" stage")
		_ = viper.BindPFlag("skip."+name, runCmd.Flags().Lookup(flag))
	}
}
