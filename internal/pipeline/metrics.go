package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gabarito_stage_duration_seconds",
			Help:    "Duration of one pipeline stage in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25, 60, 120},
		},
		[]string{"stage"},
	)

	stageItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gabarito_stage_items_total",
			Help: "Items handled by pipeline stages",
		},
		[]string{"stage", "outcome"}, // outcome: processed, failed
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gabarito_runs_total",
			Help: "Completed pipeline runs",
		},
		[]string{"status"}, // status: ok, failed
	)
)
