package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gabarito_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gabarito_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	runsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gabarito_http_runs_started_total",
			Help: "Runs started through the HTTP API",
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gabarito_websocket_active_connections",
			Help: "Number of active log stream connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gabarito_websocket_messages_sent_total",
			Help: "Log entries sent over WebSocket",
		},
	)
)
