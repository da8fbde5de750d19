package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilemarch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tilemarch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	contourRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilemarch_contour_requests_total",
			Help: "Total number of contour requests",
		},
		[]string{"status"}, // status: ok, invalid, error
	)

	contourGridCells = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tilemarch_contour_grid_cells",
			Help:    "Number of grid cells per contour request",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8),
		},
	)

	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tilemarch_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, cells
	)
)
