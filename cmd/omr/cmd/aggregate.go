package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/gabarito/internal/aggregate"
	"github.com/MeKo-Tech/gabarito/internal/logsink"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <answers-dir> <dest-dir>",
	Short: "Collect per-page answer files into one line per exam",
	Long: `Read every numbered *.txt answer file of <answers-dir> in page order and
write one line per page to <dest-dir>/respostas.txt.

Examples:
  omr aggregate Respostas Resposta`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sink := logsink.NewSlog(slog.Default(), "component", "aggregate")
		res := aggregate.Run(cmd.Context(), aggregate.Options{InDir: args[0], DestDir: args[1]}, sink)
		if res.Err != nil {
			return res.Err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Aggregated %d files into %s (%d failed, %d skipped)\n",
			res.Processed, filepath.Join(args[1], aggregate.FileName), res.Failed, res.Warnings)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}
