// Package server exposes run control and live logs over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/runner"
)

// Server holds the HTTP handlers' dependencies.
type Server struct {
	runner       *runner.Runner
	console      *logsink.Console
	corsOrigin   string
	pollInterval time.Duration
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	ShutdownTimeout time.Duration
	// LogPollInterval is how often the websocket stream drains the console.
	LogPollInterval time.Duration
}

// Response types for API endpoints.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

type RunResponse struct {
	RunID string `json:"run_id"`
}

type LogsResponse struct {
	Entries []logsink.Entry `json:"entries"`
	Next    int             `json:"next"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a server driving r and reading logs from console.
func NewServer(cfg Config, r *runner.Runner, console *logsink.Console) *Server {
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	poll := cfg.LogPollInterval
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &Server{runner: r, console: console, corsOrigin: origin, pollInterval: poll}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/runs", s.corsMiddleware(s.startRunHandler))
	mux.HandleFunc("/status", s.corsMiddleware(s.statusHandler))
	mux.HandleFunc("/logs", s.corsMiddleware(s.logsHandler))
	mux.HandleFunc("/ws/logs", s.logStreamHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
