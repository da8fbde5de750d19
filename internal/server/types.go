package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	corsOrigin     string
	maxBodyBytes   int64
	maxCells       int64
	timeout        time.Duration
	maxStepsFactor int
	rateLimiter    *RateLimiter
	logger         *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Host       string
	Port       int
	CORSOrigin string
	MaxBodyMB  int64
	// MaxCells bounds the tiles of one request; zero means unlimited.
	MaxCells       int64
	TimeoutSec     int
	MaxStepsFactor int
	RateLimit      RateLimitConfig
	Logger         *slog.Logger
}

// RateLimitConfig enables per-client limits when Enabled is set.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxCellsPerDay    int64
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ContoursRequest is the body of POST /v1/contours.
type ContoursRequest struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	Tiles        []int   `json:"tiles"`
	CollidingIDs []int   `json:"colliding_ids"`
	Scale        float64 `json:"scale,omitempty"`
}

// ContourPath is one contour in a response.
type ContourPath struct {
	Polygon []utils.IPoint `json:"polygon"`
	Corners []utils.IPoint `json:"corners"`
	Scaled  []utils.Point  `json:"scaled"`
	Hole    bool           `json:"hole"`
}

// ContoursResponse is the body returned by POST /v1/contours.
type ContoursResponse struct {
	Success bool           `json:"success"`
	Paths   []ContourPath  `json:"paths,omitempty"`
	Stats   *marcher.Stats `json:"stats,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// NewServer creates a contour server.
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		corsOrigin:     config.CORSOrigin,
		maxBodyBytes:   config.MaxBodyMB << 20,
		maxCells:       config.MaxCells,
		timeout:        time.Duration(config.TimeoutSec) * time.Second,
		maxStepsFactor: config.MaxStepsFactor,
		logger:         logger,
	}
	if config.RateLimit.Enabled {
		rl := config.RateLimit
		s.rateLimiter = NewRateLimiter(rl.RequestsPerMinute, rl.RequestsPerHour, rl.MaxRequestsPerDay, rl.MaxCellsPerDay)
	}
	return s
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/v1/contours", s.corsMiddleware(s.contoursHandler))
	mux.Handle("/metrics", promhttp.Handler())
}
