package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/MeKo-Tech/tilemarch/internal/config"
	"github.com/MeKo-Tech/tilemarch/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global configuration loader.
	configLoader *config.Loader
	// Global configuration.
	globalConfig *config.Config
	// Configuration file path.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "marcher",
	Short: "Contour extraction for tile-based levels",
	Long: `marcher traces the outlines of colliding tiles in a tile grid with marching
squares, simplifies them into polygons and caches the result next to the level.

This tool provides:
- Contour extraction for Tiled (.tmx) maps and CSV grids
- A plain-text polygon cache that skips the scan on later runs
- Debug images of the classified grid and the traced contours
- An HTTP service exposing the extraction and its metrics

Examples:
  marcher scan level.tmx
  marcher scan grid.csv --colliding 1,2 --format json
  marcher render level.tmx --mode paths --out paths.png
  marcher serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.PersistentFlags().GetBool("version")
		if v {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return nil
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetRootCommand returns the root command for testing purposes.
func GetRootCommand() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/tilemarch, /etc/tilemarch)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("layer", "level", "layer to process")
	rootCmd.PersistentFlags().String("cache-dir", "", "directory for contour cache files (empty disables caching)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "ignore and do not write contour caches")
	rootCmd.PersistentFlags().Bool("refresh-cache", false, "delete existing contour caches and rebuild them")
	rootCmd.PersistentFlags().Bool("version", false, "print version information and exit")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("level.layer", rootCmd.PersistentFlags().Lookup("layer"))
	_ = viper.BindPFlag("marcher.cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	_ = viper.BindPFlag("marcher.no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("marcher.refresh_cache", rootCmd.PersistentFlags().Lookup("refresh-cache"))

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if globalConfig == nil {
			initConfig()
		}
		cfg := GetConfig()
		slog.SetDefault(newLogger(cfg))
		if used := GetConfigLoader().GetConfigFileUsed(); used != "" {
			slog.Debug("configuration loaded", "file", used)
		}
	}
}

// newLogger builds the JSON logger. Logs go to stderr so scan output on
// stdout stays machine readable.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configLoader = config.NewLoader()

	var err error
	if cfgFile != "" {
		globalConfig, err = configLoader.LoadWithFile(cfgFile)
	} else {
		globalConfig, err = configLoader.Load()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// GetConfig returns the configuration including command-line flags.
func GetConfig() *config.Config {
	if globalConfig == nil {
		initConfig()
	}

	// Flags are bound after the initial load; unmarshal again to pick them up.
	var cfg config.Config
	if err := GetConfigLoader().GetViper().Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling updated configuration: %v\n", err)
		return globalConfig
	}
	return &cfg
}

// GetConfigLoader returns the global configuration loader.
func GetConfigLoader() *config.Loader {
	if configLoader == nil {
		configLoader = config.NewLoader()
	}
	return configLoader
}
