package marcher

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/MeKo-Tech/tilemarch/internal/cache"
	"github.com/MeKo-Tech/tilemarch/internal/common"
)

// Options holds everything needed to build an Engine.
type Options struct {
	Width        int
	Height       int
	Tiles        []int
	CollidingIDs []int

	// CachePath is the plain-text cache location. Empty disables caching.
	CachePath string

	// RefreshCache deletes an existing cache before construction, so the
	// grid is always scanned and a failed write leaves no stale file behind.
	RefreshCache bool

	// Scale converts grid units to world units. Zero means 1.
	Scale float64

	// MaxStepsFactor bounds a single trace; zero selects the default.
	MaxStepsFactor int

	Logger *slog.Logger
}

// Stats describes how an engine's paths were produced.
type Stats struct {
	FromCache     bool          `json:"from_cache" yaml:"from_cache"`
	Scan          ScanStats     `json:"scan" yaml:"scan"`
	Paths         int           `json:"paths" yaml:"paths"`
	Vertices      int           `json:"vertices" yaml:"vertices"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
	CacheWriteErr error         `json:"-" yaml:"-"`
}

// Engine is the result of one construction: the grid plus its optimized and
// scaled contours. It is immutable and safe for concurrent reads.
type Engine struct {
	grid  *Grid
	paths PathSet
	scale float64
	stats Stats
}

// New validates the inputs, then loads the contours from the cache or scans
// the grid, optimizes and scales them. Only invalid inputs produce an error;
// cache failures fall back to scanning or are logged.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale < 0 {
		return nil, &ConfigurationError{
			Width: opts.Width, Height: opts.Height, Tiles: len(opts.Tiles),
			Reason: fmt.Sprintf("invalid scale %v", opts.Scale),
		}
	}

	grid, err := NewGrid(opts.Width, opts.Height, opts.Tiles, opts.CollidingIDs)
	if err != nil {
		return nil, err
	}

	timer := common.NewNamedTimer("construct")
	store := cache.NewStore(opts.CachePath)
	e := &Engine{grid: grid, scale: scale}

	var (
		paths     PathSet
		fromCache bool
	)
	if opts.RefreshCache {
		if err := store.Remove(); err != nil {
			logger.Warn("failed to remove contour cache", "path", store.Path(), "error", err)
		}
	} else {
		paths, fromCache = loadCached(store, logger)
	}
	if !fromCache {
		var traced PathSet
		traced, e.stats.Scan = Scan(grid, ScanOptions{StepFactor: opts.MaxStepsFactor, Logger: logger})
		paths = Optimize(traced)
		// Cached polygons are stored optimized; a cached load skips Optimize.
		if err := store.Save(paths.Polygons()); err != nil {
			e.stats.CacheWriteErr = err
			cacheWriteFailures.Inc()
			logger.Warn("failed to write contour cache", "path", store.Path(), "error", err)
		}
	}

	e.paths = Scale(paths, scale)
	e.stats.FromCache = fromCache
	e.stats.Paths = len(e.paths)
	e.stats.Vertices = e.paths.VertexCount()
	e.stats.Duration = timer.Stop()

	source := "scan"
	if fromCache {
		source = "cache"
	}
	constructionsTotal.WithLabelValues(source).Inc()
	constructionDuration.WithLabelValues(source).Observe(e.stats.Duration.Seconds())
	pathsProduced.Observe(float64(len(e.paths)))

	logger.Info("contours ready",
		"source", source,
		"paths", e.stats.Paths,
		"vertices", e.stats.Vertices,
		"duration", e.stats.Duration)
	return e, nil
}

func loadCached(store *cache.Store, logger *slog.Logger) (PathSet, bool) {
	if !store.Enabled() {
		return nil, false
	}
	polys, err := store.Load()
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			logger.Debug("contour cache miss", "path", store.Path())
		} else {
			logger.Warn("ignoring unreadable contour cache", "path", store.Path(), "error", err)
		}
		return nil, false
	}
	return fromPolygons(polys), true
}

// Grid returns the classified grid.
func (e *Engine) Grid() *Grid { return e.grid }

// Paths returns a copy of the contours.
func (e *Engine) Paths() PathSet { return e.paths.Clone() }

// ScaleFactor returns the world-units-per-grid-unit factor in use.
func (e *Engine) ScaleFactor() float64 { return e.scale }

// Stats returns construction statistics.
func (e *Engine) Stats() Stats { return e.stats }
