package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/tilemarch/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for contour extraction",
	Long: `Start an HTTP server that extracts contours from posted tile grids.

The server provides the following endpoints:
  POST /v1/contours - Extract contours from a JSON grid
  GET  /health      - Health check endpoint
  GET  /metrics     - Prometheus metrics

Requests never read or write contour caches.

Examples:
  marcher serve
  marcher serve --port 8080
  marcher serve --host 0.0.0.0 --port 3000 --rate-limit-enabled`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		serverConfig := cfg.ToServerConfig()
		serverConfig.Logger = slog.Default()
		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		timeout := time.Duration(serverConfig.TimeoutSec) * time.Second

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		srv := server.NewServer(serverConfig)
		mux := http.NewServeMux()
		srv.SetupRoutes(mux)

		httpServer := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", serverConfig.Host, serverConfig.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       timeout,
			WriteTimeout:      timeout + 5*time.Second,
		}

		go func() {
			slog.Info("Starting contour server", "host", serverConfig.Host, "port", serverConfig.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Server error", "error", err)
				cancel()
			}
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
		case <-ctx.Done():
			slog.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		slog.Info("Starting graceful shutdown", "timeout", shutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
			return err
		}
		slog.Info("Graceful shutdown completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Int("max-body-mb", 16, "maximum request body size in MB")
	serveCmd.Flags().Int64("max-cells", 4_000_000, "maximum grid cells per request (0 = unlimited)")
	serveCmd.Flags().Int("timeout", 30, "request timeout in seconds")
	serveCmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	serveCmd.Flags().Bool("rate-limit-enabled", false, "enable rate limiting")
	serveCmd.Flags().Int("requests-per-minute", 60, "maximum requests per minute per client")
	serveCmd.Flags().Int("requests-per-hour", 1000, "maximum requests per hour per client")
	serveCmd.Flags().Int("max-requests-per-day", 10000, "maximum requests per day per client")
	serveCmd.Flags().Int64("max-cells-per-day", 100_000_000, "maximum grid cells per day per client")

	for key, flag := range map[string]string{
		"server.host":                            "host",
		"server.port":                            "port",
		"server.cors_origin":                     "cors-origin",
		"server.max_body_mb":                     "max-body-mb",
		"server.max_cells":                       "max-cells",
		"server.timeout_sec":                     "timeout",
		"server.shutdown_timeout":                "shutdown-timeout",
		"server.rate_limit.enabled":              "rate-limit-enabled",
		"server.rate_limit.requests_per_minute":  "requests-per-minute",
		"server.rate_limit.requests_per_hour":    "requests-per-hour",
		"server.rate_limit.max_requests_per_day": "max-requests-per-day",
		"server.rate_limit.max_cells_per_day":    "max-cells-per-day",
	} {
		_ = viper.BindPFlag(key, serveCmd.Flags().Lookup(flag))
	}
}
