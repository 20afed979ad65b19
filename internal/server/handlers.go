package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/gabarito/internal/logsink"
	"github.com/MeKo-Tech/gabarito/internal/runner"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// startRunHandler schedules a grading run. Only one run may be in flight.
func (s *Server) startRunHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := s.runner.Start()
	switch {
	case errors.Is(err, runner.ErrBusy):
		s.writeErrorResponse(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		s.writeErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	runsStarted.Inc()
	w.Header().Set("Location", "/status")
	writeJSON(w, http.StatusAccepted, RunResponse{RunID: id})
}

// statusHandler reports the runner state and the last run's result.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.runner.State())
}

// logsHandler drains pending log entries and returns the history from the
// "since" cursor on.
func (s *Server) logsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeErrorResponse(w, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
		since = n
	}
	s.console.Drain()
	entries, next := s.console.Read(since)
	if entries == nil {
		entries = []logsink.Entry{}
	}
	writeJSON(w, http.StatusOK, LogsResponse{Entries: entries, Next: next})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}
