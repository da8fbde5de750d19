package marcher

import (
	"errors"
	"log/slog"
)

// ScanOptions tunes a full grid scan.
type ScanOptions struct {
	// StepFactor multiplies the corner count to bound a single trace.
	// Zero selects the default.
	StepFactor int
	// MaxSteps overrides the computed per-trace budget when positive.
	MaxSteps int
	Logger   *slog.Logger
}

// ScanStats summarises the work done by one scan.
type ScanStats struct {
	Traces         int `json:"traces" yaml:"traces"`
	EmptyTraces    int `json:"empty_traces" yaml:"empty_traces"`
	Divergences    int `json:"divergences" yaml:"divergences"`
	VisitedCorners int `json:"visited_corners" yaml:"visited_corners"`
}

// Scan traces every contour of g. Cells are visited in row-major order and a
// trace is started from each colliding cell whose top-left corner has not
// been walked yet. Traces that do not close are logged and skipped.
func Scan(g *Grid, opts ScanOptions) (PathSet, ScanStats) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	visited := NewVisitedMask(g.width, g.height)
	defer visited.Release()
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = maxTraceSteps(g, opts.StepFactor)
	}

	var (
		paths PathSet
		stats ScanStats
	)
	for y := range g.height {
		for x := range g.width {
			if visited.IsVisited(x, y) || !g.IsColliding(x, y) {
				continue
			}

			stats.Traces++
			path, err := traceContour(g, visited, x, y, maxSteps)
			if err != nil {
				stats.Divergences++
				traceDivergences.Inc()
				var te *TraceError
				if errors.As(err, &te) {
					logger.Warn("discarding contour trace", "x", te.StartX, "y", te.StartY, "steps", te.Steps, "error", te.Err)
				} else {
					logger.Warn("discarding contour trace", "x", x, "y", y, "error", err)
				}
				continue
			}
			if len(path.Polygon) == 0 {
				stats.EmptyTraces++
				continue
			}
			paths = append(paths, path)
		}
	}

	stats.VisitedCorners = visited.Count()
	logger.Debug("grid scan finished",
		"width", g.width, "height", g.height,
		"paths", len(paths), "traces", stats.Traces, "divergences", stats.Divergences)
	return paths, stats
}
