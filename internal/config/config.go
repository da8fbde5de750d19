package config

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MeKo-Tech/tilemarch/internal/level"
	"github.com/MeKo-Tech/tilemarch/internal/marcher"
	"github.com/MeKo-Tech/tilemarch/internal/server"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Marcher: MarcherConfig{
			Scale:          level.DefaultScale,
			CacheDir:       "",
			MaxStepsFactor: 4,
		},
		Level: LevelConfig{
			Layer:    "level",
			Workers:  4,
			Profiles: level.DefaultProfiles(),
		},
		Render: RenderConfig{
			CellSize:  8,
			Overwrite: false,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxBodyMB:       16,
			MaxCells:        4_000_000,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerMinute: 60,
				RequestsPerHour:   1000,
				MaxRequestsPerDay: 10000,
				MaxCellsPerDay:    100_000_000,
			},
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "yaml"}
	if c.Output.Format != "" && !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(validFormats, ", "))
	}

	if math.IsNaN(c.Marcher.Scale) || math.IsInf(c.Marcher.Scale, 0) || c.Marcher.Scale < 0 {
		return fmt.Errorf("invalid marcher scale: %v (must be a finite, non-negative number)", c.Marcher.Scale)
	}
	if c.Marcher.MaxStepsFactor < 0 {
		return fmt.Errorf("invalid max steps factor: %d (must not be negative)", c.Marcher.MaxStepsFactor)
	}

	if c.Level.Workers <= 0 {
		return fmt.Errorf("invalid level workers: %d (must be positive)", c.Level.Workers)
	}
	seen := make(map[string]bool, len(c.Level.Profiles))
	caches := make(map[string]string, len(c.Level.Profiles))
	for i, p := range c.Level.Profiles {
		if p.Layer == "" {
			return fmt.Errorf("level profile %d: layer name is required", i)
		}
		if seen[p.Layer] {
			return fmt.Errorf("level profile %d: duplicate layer %q", i, p.Layer)
		}
		seen[p.Layer] = true
		if p.CacheFile != "" {
			file := filepath.Clean(p.CacheFile)
			if other, dup := caches[file]; dup {
				return fmt.Errorf("level profile %q: cache file %q is already used by layer %q", p.Layer, p.CacheFile, other)
			}
			caches[file] = p.Layer
		}
		if _, err := level.ParseObjectType(p.ObjectType); err != nil {
			return fmt.Errorf("level profile %q: %w", p.Layer, err)
		}
	}

	if c.Render.CellSize <= 0 {
		return fmt.Errorf("invalid render cell size: %d (must be positive)", c.Render.CellSize)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxBodyMB <= 0 {
		return fmt.Errorf("invalid max body size: %d (must be positive)", c.Server.MaxBodyMB)
	}
	if c.Server.MaxCells < 0 {
		return fmt.Errorf("invalid max cells: %d (must not be negative)", c.Server.MaxCells)
	}
	if c.Server.RateLimit.Enabled && c.Server.RateLimit.MaxCellsPerDay < 0 {
		return fmt.Errorf("invalid cell quota: %d (must not be negative)", c.Server.RateLimit.MaxCellsPerDay)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	return nil
}

// Profile returns the profile configured for layer, if any.
func (c *Config) Profile(layer string) (level.Profile, bool) {
	return level.FindProfile(c.Level.Profiles, layer)
}

// CachePath returns the cache file for a profile, or "" when caching is off.
func (c *Config) CachePath(p level.Profile) string {
	if c.Marcher.NoCache || c.Marcher.CacheDir == "" || p.CacheFile == "" {
		return ""
	}
	if filepath.IsAbs(p.CacheFile) {
		return p.CacheFile
	}
	return filepath.Join(c.Marcher.CacheDir, p.CacheFile)
}

// ToBuildOptions converts the configuration into level build options.
func (c *Config) ToBuildOptions() level.BuildOptions {
	dir := c.Marcher.CacheDir
	if c.Marcher.NoCache {
		dir = ""
	}
	return level.BuildOptions{
		BaseDir:        dir,
		Scale:          c.Marcher.Scale,
		MaxStepsFactor: c.Marcher.MaxStepsFactor,
		RefreshCache:   c.Marcher.RefreshCache,
		Workers:        c.Level.Workers,
	}
}

// ToMarcherOptions builds engine options for one layer grid.
func (c *Config) ToMarcherOptions(l *level.Layer, p level.Profile) marcher.Options {
	return marcher.Options{
		Width:          l.Width,
		Height:         l.Height,
		Tiles:          l.Tiles,
		CollidingIDs:   p.CollidingIDs,
		CachePath:      c.CachePath(p),
		RefreshCache:   c.Marcher.RefreshCache,
		Scale:          c.Marcher.Scale,
		MaxStepsFactor: c.Marcher.MaxStepsFactor,
	}
}

// ToServerConfig converts the configuration into HTTP server settings.
func (c *Config) ToServerConfig() server.Config {
	rl := c.Server.RateLimit
	return server.Config{
		Host:           c.Server.Host,
		Port:           c.Server.Port,
		CORSOrigin:     c.Server.CORSOrigin,
		MaxBodyMB:      int64(c.Server.MaxBodyMB),
		MaxCells:       c.Server.MaxCells,
		TimeoutSec:     c.Server.TimeoutSec,
		MaxStepsFactor: c.Marcher.MaxStepsFactor,
		RateLimit: server.RateLimitConfig{
			Enabled:           rl.Enabled,
			RequestsPerMinute: rl.RequestsPerMinute,
			RequestsPerHour:   rl.RequestsPerHour,
			MaxRequestsPerDay: rl.MaxRequestsPerDay,
			MaxCellsPerDay:    rl.MaxCellsPerDay,
		},
	}
}
