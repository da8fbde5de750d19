package level

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/tilemarch/internal/marcher"
)

// DefaultScale is the grid-to-world factor used by the stock level setup.
const DefaultScale = 1.0 / 3.0

// BuildOptions controls BuildLayers.
type BuildOptions struct {
	// BaseDir is where relative cache files are placed. Empty disables caching.
	BaseDir string
	// Scale is passed to every engine. Zero selects 1.
	Scale float64
	// MaxStepsFactor bounds every trace; zero selects the default.
	MaxStepsFactor int
	// RefreshCache rescans every layer and rewrites its cache.
	RefreshCache bool
	// Workers bounds concurrent constructions (0 = runtime.NumCPU()).
	Workers int
	Logger  *slog.Logger
}

// LayerResult pairs a profiled layer with its engine.
type LayerResult struct {
	Layer   *Layer
	Profile Profile
	Engine  *marcher.Engine
	Err     error
}

type layerJob struct {
	index   int
	layer   *Layer
	profile Profile
}

// BuildLayers constructs one engine per layer of m that has a profile. Layers
// without a profile are skipped. Results keep the map's layer order; the
// first construction error is returned alongside all results.
func BuildLayers(ctx context.Context, m *Map, profiles []Profile, opts BuildOptions) ([]LayerResult, error) {
	if m == nil {
		return nil, errors.New("nil map")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var jobs []layerJob
	for _, l := range m.Layers {
		p, ok := FindProfile(profiles, l.Name)
		if !ok {
			logger.Debug("skipping layer without profile", "layer", l.Name)
			continue
		}
		jobs = append(jobs, layerJob{index: len(jobs), layer: l, profile: p})
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))

	queue := make(chan layerJob, len(jobs))
	results := make([]LayerResult, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case job, ok := <-queue:
					if !ok {
						return
					}
					results[job.index] = buildLayer(job, opts, logger)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, job := range jobs {
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	for _, r := range results {
		if r.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("layer %s: %w", r.Layer.Name, r.Err)
		}
	}
	return results, firstErr
}

func buildLayer(job layerJob, opts BuildOptions, logger *slog.Logger) LayerResult {
	cachePath := ""
	if opts.BaseDir != "" && job.profile.CacheFile != "" {
		cachePath = job.profile.CacheFile
		if !filepath.IsAbs(cachePath) {
			cachePath = filepath.Join(opts.BaseDir, cachePath)
		}
	}

	e, err := marcher.New(marcher.Options{
		Width:          job.layer.Width,
		Height:         job.layer.Height,
		Tiles:          job.layer.Tiles,
		CollidingIDs:   job.profile.CollidingIDs,
		CachePath:      cachePath,
		RefreshCache:   opts.RefreshCache,
		Scale:          opts.Scale,
		MaxStepsFactor: opts.MaxStepsFactor,
		Logger:         logger.With("layer", job.layer.Name),
	})
	return LayerResult{Layer: job.layer, Profile: job.profile, Engine: e, Err: err}
}
