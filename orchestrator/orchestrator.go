// Package orchestrator drives a full scan: fan out discovery across
// (region, type) tasks, evaluate the rule catalog, run the enrichment
// stages, and persist everything as one session.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/finlens/finlens/alert"
	"github.com/finlens/finlens/costs"
	"github.com/finlens/finlens/providers"
	"github.com/finlens/finlens/scanlog"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

// DefaultWorkers caps the discovery worker pool.
const DefaultWorkers = 16

// Orchestrator coordinates discovery, evaluation, enrichment, and
// persistence for one scan at a time.
type Orchestrator struct {
	store    *storage.Store
	provider providers.Provider
	fetcher  costs.Fetcher
	notifier *alert.Notifier
	events   *scanlog.Log
	logger   *telemetry.Logger
	workers  int
}

// NewOrchestrator creates an orchestrator around a store and a provider.
func NewOrchestrator(store *storage.Store, provider providers.Provider) *Orchestrator {
	return &Orchestrator{
		store:    store,
		provider: provider,
		logger:   telemetry.NewLogger("orchestrator"),
		workers:  DefaultWorkers,
	}
}

// WithCostFetcher enables the cost stage.
func (o *Orchestrator) WithCostFetcher(f costs.Fetcher) *Orchestrator {
	o.fetcher = f
	return o
}

// WithNotifier enables Slack alerting after finalization.
func (o *Orchestrator) WithNotifier(n *alert.Notifier) *Orchestrator {
	o.notifier = n
	return o
}

// WithEventLog enables the append-only scan event log.
func (o *Orchestrator) WithEventLog(l *scanlog.Log) *Orchestrator {
	o.events = l
	return o
}

// WithWorkers overrides the worker pool cap.
func (o *Orchestrator) WithWorkers(n int) *Orchestrator {
	if n > 0 {
		o.workers = n
	}
	return o
}

// Run executes one scan for a pending session. On success the session is
// completed and every artifact is persisted under its ID. A returned
// error means the session was moved to failed.
func (o *Orchestrator) Run(ctx context.Context, session *types.ScanSession) (*ScanResult, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "orchestrator.Run")
	defer span.End()

	start := time.Now()

	if err := session.Transition(types.ScanRunning); err != nil {
		return nil, err
	}
	if err := o.store.PutSession(session); err != nil {
		return nil, o.fail(ctx, session, fmt.Errorf("persist session: %w", err))
	}

	tasks := buildTasks(session.Regions, session.ResourceTypes)
	o.appendEvent(scanlog.EventScanStarted, session.ID, map[string]any{
		"regions": session.Regions,
		"tasks":   len(tasks),
	})
	o.logger.LogScanStart(ctx, session.ID, session.Regions, len(tasks))
	if telemetry.ScansStarted != nil {
		telemetry.ScansStarted.Add(ctx, 1)
	}

	resources, failures := o.runTasks(ctx, session.ID, tasks)
	if len(tasks) > 0 && len(failures) == len(tasks) {
		return nil, o.fail(ctx, session, fmt.Errorf("all %d discovery tasks failed", len(tasks)))
	}

	violations, byResource := o.evaluate(session.ID, resources)

	result := &ScanResult{
		Session:      session,
		Resources:    resources,
		Violations:   violations,
		TaskFailures: failures,
	}
	o.runStages(ctx, result, byResource)

	if err := o.finalize(ctx, result, start); err != nil {
		return nil, o.fail(ctx, session, err)
	}
	return result, nil
}

// fail moves the session to the failed state and records why.
func (o *Orchestrator) fail(ctx context.Context, session *types.ScanSession, cause error) error {
	session.Error = cause.Error()
	now := time.Now().UTC()
	session.CompletedAt = &now
	if err := session.Transition(types.ScanFailed); err != nil {
		o.logger.LogScanFailed(ctx, session.ID, err)
	}
	if err := o.store.PutSession(session); err != nil {
		o.logger.LogStorageError(ctx, "put_session", err)
	}

	o.appendEventError(scanlog.EventScanFailed, session.ID, nil, cause)
	o.logger.LogScanFailed(ctx, session.ID, cause)
	if telemetry.ScansFailed != nil {
		telemetry.ScansFailed.Add(ctx, 1)
	}
	return cause
}

func (o *Orchestrator) appendEvent(eventType scanlog.EventType, scanID string, data any) {
	if o.events == nil {
		return
	}
	if err := o.events.Append(eventType, scanID, data); err != nil {
		o.logger.Warn().Err(err).Str("scan_id", scanID).Msg("scan event append failed")
	}
}

func (o *Orchestrator) appendEventError(eventType scanlog.EventType, scanID string, data any, cause error) {
	if o.events == nil {
		return
	}
	if err := o.events.AppendError(eventType, scanID, data, cause); err != nil {
		o.logger.Warn().Err(err).Str("scan_id", scanID).Msg("scan event append failed")
	}
}
