package main

import (
	"context"
	"fmt"

	"github.com/finlens/finlens/alert"
	"github.com/finlens/finlens/config"
	"github.com/finlens/finlens/costs"
	"github.com/finlens/finlens/orchestrator"
	"github.com/finlens/finlens/providers"
	"github.com/finlens/finlens/scanlog"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/telemetry"

	// Provider registration.
	_ "github.com/finlens/finlens/providers/aws"
	_ "github.com/finlens/finlens/providers/mock"
)

// runtime bundles everything a command needs after setup.
type runtime struct {
	cfg    *config.Config
	store  *storage.Store
	events *scanlog.Log
	orch   *orchestrator.Orchestrator
	logger *telemetry.Logger
}

func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

// newRuntime wires the store, event log, provider, and orchestrator
// from configuration.
func newRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	store, err := storage.Open(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	events, err := scanlog.Open(cfg.Storage.ScanLogDir)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open scan log: %w", err)
	}

	provider, err := providers.New(ctx, cfg.Provider, providers.Config{
		Region: cfg.Regions[0],
		Seed:   cfg.MockSeed,
	})
	if err != nil {
		events.Close()
		store.Close()
		return nil, fmt.Errorf("create provider %q: %w", cfg.Provider, err)
	}

	fetcher, err := newCostFetcher(ctx, cfg)
	if err != nil {
		events.Close()
		store.Close()
		return nil, err
	}

	logger := telemetry.NewLogger("finlens")
	notifier := alert.NewNotifier(cfg.Alerts.SlackWebhookURL, cfg.Alerts.BudgetThresholdUSD, logger)

	orch := orchestrator.NewOrchestrator(store, provider).
		WithCostFetcher(fetcher).
		WithNotifier(notifier).
		WithEventLog(events).
		WithWorkers(cfg.Workers)

	return &runtime{
		cfg:    cfg,
		store:  store,
		events: events,
		orch:   orch,
		logger: logger,
	}, nil
}

func newCostFetcher(ctx context.Context, cfg *config.Config) (costs.Fetcher, error) {
	if cfg.Provider == "mock" {
		return costs.NewMockFetcher(cfg.MockSeed), nil
	}
	fetcher, err := costs.NewExplorerFetcher(ctx)
	if err != nil {
		return nil, fmt.Errorf("create cost fetcher: %w", err)
	}
	return fetcher, nil
}

func (r *runtime) Close() {
	if err := r.events.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("scan log close failed")
	}
	if err := r.store.Close(); err != nil {
		r.logger.Warn().Err(err).Msg("store close failed")
	}
}
