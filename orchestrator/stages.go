package orchestrator

import (
	"context"
	"time"

	"github.com/finlens/finlens/recommend"
	"github.com/finlens/finlens/scanlog"
	"github.com/finlens/finlens/scoring"
	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

// runStages executes the sequential enrichment stages. Each stage is
// best effort: a failure leaves its output empty and is recorded as an
// explicit stage result, never as a scan failure.
func (o *Orchestrator) runStages(ctx context.Context, result *ScanResult, byResource map[string][]types.Violation) {
	o.runStage(ctx, result, "cost", func() error {
		if o.fetcher == nil {
			return nil
		}
		records, err := o.fetcher.Fetch(ctx, result.Session.Regions)
		if err != nil {
			return err
		}
		result.Costs = records
		return nil
	})

	o.runStage(ctx, result, "recommendations", func() error {
		result.Recommendations = recommend.Generate(result.Session.ID, result.Violations, result.Resources)
		return nil
	})

	o.runStage(ctx, result, "compliance", func() error {
		result.Compliance = scoring.Compliance(result.Violations)
		return nil
	})

	o.runStage(ctx, result, "risk", func() error {
		result.Risk = scoring.ScanRisk(result.Resources, byResource)
		applyRiskScores(result.Resources, result.Risk)
		return nil
	})
}

func (o *Orchestrator) runStage(ctx context.Context, result *ScanResult, name string, fn func() error) {
	start := time.Now()
	stage := StageResult{Name: name, Status: StageCompleted}

	if err := fn(); err != nil {
		stage.Status = StageFailed
		stage.Error = err.Error()
		o.logger.LogStageFailed(ctx, result.Session.ID, name, err)
		o.appendEventError(scanlog.EventStageFailed, result.Session.ID, map[string]any{"stage": name}, err)
	} else {
		o.appendEvent(scanlog.EventStageCompleted, result.Session.ID, map[string]any{"stage": name})
	}

	stage.Duration = time.Since(start)
	result.Stages = append(result.Stages, stage)
}

// applyRiskScores copies per-resource scores from the risk report back
// onto the resource records before they are persisted.
func applyRiskScores(resources []types.Resource, report types.RiskReport) {
	scores := make(map[string]int, len(report.Resources))
	for _, r := range report.Resources {
		scores[r.ResourceID] = r.Score
	}
	for i := range resources {
		resources[i].RiskScore = scores[resources[i].ID]
	}
}

// finalize persists every artifact, completes the session, and emits
// alerts and metrics.
func (o *Orchestrator) finalize(ctx context.Context, result *ScanResult, start time.Time) error {
	session := result.Session

	session.ResourceCount = len(result.Resources)
	session.ViolationCount = len(result.Violations)
	session.TotalMonthlyWaste = recommend.TotalSavings(result.Recommendations)
	session.OverallRiskScore = result.Risk.OverallScore
	session.RiskLevel = result.Risk.Level
	session.ComplianceScore = result.Compliance.OverallScore

	now := time.Now().UTC()
	session.CompletedAt = &now
	if err := session.Transition(types.ScanCompleted); err != nil {
		return err
	}

	if err := o.persist(ctx, result); err != nil {
		return err
	}

	result.Duration = time.Since(start)

	if o.notifier.Enabled() {
		o.notifier.NotifyCritical(ctx, session.ID, result.Violations)
		o.notifier.NotifyBudget(ctx, session.ID, session.TotalMonthlyWaste)
	}

	o.recordMetrics(ctx, result)
	o.appendEvent(scanlog.EventScanCompleted, session.ID, map[string]any{
		"resources":  session.ResourceCount,
		"violations": session.ViolationCount,
		"risk_score": session.OverallRiskScore,
	})
	o.logger.LogScanComplete(ctx, session.ID, session.ResourceCount, session.ViolationCount,
		float64(result.Duration.Milliseconds()))

	return nil
}

func (o *Orchestrator) persist(ctx context.Context, result *ScanResult) error {
	id := result.Session.ID

	steps := []struct {
		name string
		fn   func() error
	}{
		{"save_resources", func() error { return o.store.SaveResources(id, result.Resources) }},
		{"save_violations", func() error { return o.store.SaveViolations(id, result.Violations) }},
		{"save_recommendations", func() error { return o.store.SaveRecommendations(id, result.Recommendations) }},
		{"save_costs", func() error { return o.store.SaveCosts(id, result.Costs) }},
		{"save_compliance", func() error { return o.store.SaveCompliance(id, result.Compliance) }},
		{"save_risk", func() error { return o.store.SaveRisk(id, result.Risk) }},
		{"put_session", func() error { return o.store.PutSession(result.Session) }},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			o.logger.LogStorageError(ctx, step.name, err)
			return err
		}
	}
	return nil
}

func (o *Orchestrator) recordMetrics(ctx context.Context, result *ScanResult) {
	if telemetry.ScansCompleted == nil {
		return
	}
	telemetry.ScansCompleted.Add(ctx, 1)
	telemetry.ResourcesDiscovered.Add(ctx, int64(len(result.Resources)))
	telemetry.ViolationsFound.Add(ctx, int64(len(result.Violations)))
	telemetry.ScanDuration.Record(ctx, result.Duration.Seconds())
	telemetry.ScanRiskScore.Record(ctx, int64(result.Risk.OverallScore))
	telemetry.MonthlyWaste.Record(ctx, result.Session.TotalMonthlyWaste)
}
