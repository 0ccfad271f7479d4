package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/finlens/finlens/api"
	"github.com/finlens/finlens/scanlog"
	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server with scheduled scans",
	Long: `Run FinLens as a long-lived service:

- REST API for triggering scans and reading results
- Prometheus metrics endpoint
- Periodic scans on the configured interval
- Graceful shutdown on SIGTERM/SIGINT`,
	Example: `  finlens serve                        # Serve with config defaults
  finlens serve --config finlens.yaml  # Explicit config file`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "finlens",
		ServiceVersion: version,
		OTELEndpoint:   cfg.OTEL.Endpoint,
		Insecure:       cfg.OTEL.Insecure,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = shutdown(shutdownCtx)
	}()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	apiServer := api.NewServer(rt.store, rt.orch, api.Defaults{
		Regions:       cfg.Regions,
		ResourceTypes: cfg.ResourceTypes,
	})

	var group run.Group

	// REST API.
	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	group.Add(func() error {
		rt.logger.Info().Str("addr", cfg.Server.ListenAddr).Msg("api server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	})

	// Prometheus metrics.
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(
		telemetry.PrometheusRegistry,
		promhttp.HandlerOpts{},
	))
	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	group.Add(func() error {
		rt.logger.Info().Str("addr", cfg.Server.MetricsAddr).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	})

	// Scheduled scans.
	if cfg.ScanInterval > 0 {
		group.Add(func() error {
			return runScheduler(ctx, rt, cfg.ScanInterval)
		}, func(error) {
			cancel()
		})
	}

	// Periodic scan log cleanup.
	if cfg.Storage.ScanLogRetention > 0 {
		group.Add(func() error {
			return runLogCleanup(ctx, rt, cfg.Storage.ScanLogDir, cfg.Storage.ScanLogRetention)
		}, func(error) {
			cancel()
		})
	}

	// Signals.
	group.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	err = group.Run()
	var signalErr run.SignalError
	if errors.As(err, &signalErr) {
		rt.logger.Info().Str("signal", signalErr.Signal.String()).Msg("shutting down")
		return nil
	}
	return err
}

// runScheduler triggers a full scan every interval until the context is
// canceled.
func runScheduler(ctx context.Context, rt *runtime, interval time.Duration) error {
	rt.logger.Info().Dur("interval", interval).Msg("scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			session := types.NewScanSession(rt.cfg.Regions, rt.cfg.ResourceTypes, "scheduler")
			if err := rt.store.PutSession(session); err != nil {
				rt.logger.Error().Err(err).Msg("scheduler failed to persist session")
				continue
			}
			if _, err := rt.orch.Run(ctx, session); err != nil {
				rt.logger.Error().Err(err).Str("scan_id", session.ID).Msg("scheduled scan failed")
			}
		}
	}
}

// runLogCleanup prunes old scan log files once a day.
func runLogCleanup(ctx context.Context, rt *runtime, dir string, retentionDays int) error {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := scanlog.Cleanup(dir, retentionDays); err != nil {
				rt.logger.Warn().Err(err).Msg("scan log cleanup failed")
			}
		}
	}
}
