package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/pipeline"
	"github.com/MeKo-Tech/gabarito/internal/runner"
	"github.com/MeKo-Tech/gabarito/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server to drive grading runs",
	Long: `Start an HTTP server that runs the pipeline in the background and
exposes its progress.

The server provides the following endpoints:
  POST /runs     - Start a run (409 while one is running)
  GET  /status   - Runner state and the last run result
  GET  /logs     - Log entries, ?since=<n> for the entries after n
  GET  /ws/logs  - Live log stream
  GET  /health   - Health check endpoint
  GET  /metrics  - Prometheus metrics

Run inputs come from the configuration (input.*, workspace.root, skip.*).

Examples:
  omr serve
  omr serve --port 8080
  omr serve --host 0.0.0.0 --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		pc := cfg.ToPipelineConfig()
		if err := pc.Validate(); err != nil {
			return fmt.Errorf("invalid run configuration: %w", err)
		}
		sc := cfg.ToServerConfig()

		console := logsink.NewConsole()
		sink := logsink.Tee(console, logsink.NewSlog(slog.Default(), "component", "runner"))
		r := runner.New(func(ctx context.Context) pipeline.RunResult {
			return pipeline.Run(ctx, pipeline.Standard(pc), sink)
		})
		defer r.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		mux := http.NewServeMux()
		server.NewServer(sc, r, console).SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", sc.Host, sc.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			slog.Info("Starting grading server", "host", sc.Host, "port", sc.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		slog.Info("Starting graceful shutdown", "timeout", sc.ShutdownTimeout.String())
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), sc.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
		// A run still going when the window closes is cancelled.
		if err := r.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Run cancelled at shutdown", "run_id", r.State().RunID, "error", err)
		}
		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.cors_origin", serveCmd.Flags().Lookup("cors-origin"))
	_ = viper.BindPFlag("server.shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))
}
