package config

import "github.com/MeKo-Tech/tilemarch/internal/level"

// Config represents the complete configuration for tilemarch.
// It covers all commands (scan, render, serve) and supports loading from
// configuration files, environment variables, and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Marcher MarcherConfig `mapstructure:"marcher" yaml:"marcher" json:"marcher"`
	Level   LevelConfig   `mapstructure:"level" yaml:"level" json:"level"`
	Render  RenderConfig  `mapstructure:"render" yaml:"render" json:"render"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// MarcherConfig contains contour extraction settings.
type MarcherConfig struct {
	Scale          float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	CacheDir       string  `mapstructure:"cache_dir" yaml:"cache_dir" json:"cache_dir"`
	NoCache        bool    `mapstructure:"no_cache" yaml:"no_cache" json:"no_cache"`
	RefreshCache   bool    `mapstructure:"refresh_cache" yaml:"refresh_cache" json:"refresh_cache"`
	MaxStepsFactor int     `mapstructure:"max_steps_factor" yaml:"max_steps_factor" json:"max_steps_factor"`
}

// LevelConfig selects layers and how they are marched.
type LevelConfig struct {
	Layer    string          `mapstructure:"layer" yaml:"layer" json:"layer"`
	Workers  int             `mapstructure:"workers" yaml:"workers" json:"workers"`
	Profiles []level.Profile `mapstructure:"profiles" yaml:"profiles" json:"profiles"`
}

// RenderConfig contains debug image settings.
type RenderConfig struct {
	CellSize  int  `mapstructure:"cell_size" yaml:"cell_size" json:"cell_size"`
	Overwrite bool `mapstructure:"overwrite" yaml:"overwrite" json:"overwrite"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxBodyMB       int    `mapstructure:"max_body_mb" yaml:"max_body_mb" json:"max_body_mb"`
	MaxCells        int64  `mapstructure:"max_cells" yaml:"max_cells" json:"max_cells"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client limits for the contour endpoint.
type RateLimitConfig struct {
	Enabled           bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	RequestsPerMinute int   `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int   `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int   `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxCellsPerDay    int64 `mapstructure:"max_cells_per_day" yaml:"max_cells_per_day" json:"max_cells_per_day"`
}
