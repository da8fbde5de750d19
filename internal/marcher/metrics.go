package marcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	constructionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilemarch_constructions_total",
			Help: "Total number of engine constructions",
		},
		[]string{"source"}, // source: cache, scan
	)

	constructionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tilemarch_construction_duration_seconds",
			Help:    "Engine construction duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"source"},
	)

	pathsProduced = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tilemarch_paths_per_construction",
			Help:    "Number of contours produced by one construction",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	traceDivergences = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tilemarch_trace_divergences_total",
			Help: "Total number of contour traces discarded for not closing",
		},
	)

	cacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tilemarch_cache_write_failures_total",
			Help: "Total number of failed cache writes",
		},
	)
)
