package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/finlens/costs"
	"github.com/finlens/finlens/providers"
	_ "github.com/finlens/finlens/providers/mock"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/types"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mockProvider(t *testing.T) providers.Provider {
	t.Helper()
	p, err := providers.New(context.Background(), "mock", providers.Config{Seed: 42})
	require.NoError(t, err)
	return p
}

// flakyProvider fails discovery for the configured types and delegates
// the rest to an inner provider.
type flakyProvider struct {
	inner providers.Provider
	fail  map[types.ResourceType]bool
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) Supports(t types.ResourceType) bool { return true }

func (p *flakyProvider) Discover(ctx context.Context, region string, t types.ResourceType) ([]types.Resource, error) {
	if p.fail[t] {
		return nil, fmt.Errorf("simulated %s outage", t)
	}
	if p.inner == nil {
		return nil, errors.New("simulated outage")
	}
	return p.inner.Discover(ctx, region, t)
}

func allTypeNames() []string {
	var names []string
	for _, t := range types.AllResourceTypes() {
		names = append(names, string(t))
	}
	return names
}

func TestBuildTasks_GlobalTypesScheduledOnce(t *testing.T) {
	tasks := buildTasks(
		[]string{"us-east-1", "eu-west-1", "ap-south-1"},
		[]string{"EC2", "IAM", "CloudFront", "S3"},
	)

	counts := make(map[types.ResourceType]int)
	for _, task := range tasks {
		counts[task.Type]++
	}
	assert.Equal(t, 3, counts[types.TypeEC2])
	assert.Equal(t, 3, counts[types.TypeS3])
	assert.Equal(t, 1, counts[types.TypeIAM])
	assert.Equal(t, 1, counts[types.TypeCloudFront])

	// Global tasks land in the first region that named them.
	for _, task := range tasks {
		if task.Type.IsGlobal() {
			assert.Equal(t, "us-east-1", task.Region)
		}
	}
}

func TestBuildTasks_SkipsUnknownTypes(t *testing.T) {
	tasks := buildTasks([]string{"us-east-1"}, []string{"EC2", "FOO"})
	require.Len(t, tasks, 1)
	assert.Equal(t, types.TypeEC2, tasks[0].Type)
}

func TestRun_CompletesWithMockProvider(t *testing.T) {
	store := testStore(t)
	o := NewOrchestrator(store, mockProvider(t)).
		WithCostFetcher(costs.NewMockFetcher(42))

	session := types.NewScanSession([]string{"us-east-1", "eu-west-1"}, allTypeNames(), "test")
	require.NoError(t, store.PutSession(session))

	result, err := o.Run(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, types.ScanCompleted, session.Status)
	require.NotNil(t, session.CompletedAt)
	assert.NotEmpty(t, result.Resources)
	assert.NotEmpty(t, result.Violations)
	assert.Equal(t, len(result.Resources), session.ResourceCount)
	assert.Equal(t, len(result.Violations), session.ViolationCount)
	assert.Empty(t, result.TaskFailures)

	// Every stage ran and completed.
	require.Len(t, result.Stages, 4)
	for _, stage := range result.Stages {
		assert.Equal(t, StageCompleted, stage.Status, stage.Name)
	}

	// Artifacts are readable back from the store.
	persisted, err := store.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ScanCompleted, persisted.Status)

	resources, err := store.GetResources(session.ID)
	require.NoError(t, err)
	assert.Len(t, resources, len(result.Resources))

	violations, err := store.GetViolations(session.ID)
	require.NoError(t, err)
	assert.Len(t, violations, len(result.Violations))

	risk, err := store.GetRisk(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.OverallRiskScore, risk.OverallScore)

	compliance, err := store.GetCompliance(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ComplianceScore, compliance.OverallScore)

	recs, err := store.GetRecommendations(session.ID)
	require.NoError(t, err)
	assert.InDelta(t, session.TotalMonthlyWaste, totalSavings(recs), 0.01)

	costRecords, err := store.GetCosts(session.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, costRecords)
}

func totalSavings(recs []types.Recommendation) float64 {
	var total float64
	for _, r := range recs {
		total += r.EstimatedMonthlySavings
	}
	return total
}

func TestRun_ViolationsCarryScanIdentity(t *testing.T) {
	store := testStore(t)
	o := NewOrchestrator(store, mockProvider(t))

	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2", "S3"}, "test")
	require.NoError(t, store.PutSession(session))

	result, err := o.Run(context.Background(), session)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, v := range result.Violations {
		assert.Equal(t, session.ID, v.ScanID)
		assert.NotEmpty(t, v.ID)
		assert.False(t, seen[v.ID], "violation IDs must be unique")
		seen[v.ID] = true
	}
}

func TestRun_AllTasksFailedFailsScan(t *testing.T) {
	store := testStore(t)
	o := NewOrchestrator(store, &flakyProvider{})

	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2", "S3"}, "test")
	require.NoError(t, store.PutSession(session))

	_, err := o.Run(context.Background(), session)
	require.Error(t, err)

	assert.Equal(t, types.ScanFailed, session.Status)
	assert.Contains(t, session.Error, "discovery tasks failed")
	require.NotNil(t, session.CompletedAt)

	persisted, err := store.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ScanFailed, persisted.Status)
}

func TestRun_PartialFailureIsIsolated(t *testing.T) {
	store := testStore(t)
	provider := &flakyProvider{
		inner: mockProvider(t),
		fail:  map[types.ResourceType]bool{types.TypeRDS: true},
	}
	o := NewOrchestrator(store, provider)

	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2", "RDS", "S3"}, "test")
	require.NoError(t, store.PutSession(session))

	result, err := o.Run(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, types.ScanCompleted, session.Status)
	require.Len(t, result.TaskFailures, 1)
	assert.Equal(t, "RDS", result.TaskFailures[0].Type)
	assert.Contains(t, result.TaskFailures[0].Error, "outage")

	for _, r := range result.Resources {
		assert.NotEqual(t, types.TypeRDS, r.Type)
	}
}

func TestRun_RejectsNonPendingSession(t *testing.T) {
	store := testStore(t)
	o := NewOrchestrator(store, mockProvider(t))

	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2"}, "test")
	require.NoError(t, session.Transition(types.ScanRunning))

	_, err := o.Run(context.Background(), session)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scan transition")
}

func TestRun_ResourceRiskScoresApplied(t *testing.T) {
	store := testStore(t)
	o := NewOrchestrator(store, mockProvider(t))

	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2"}, "test")
	require.NoError(t, store.PutSession(session))

	result, err := o.Run(context.Background(), session)
	require.NoError(t, err)

	var scored int
	for _, r := range result.Resources {
		if r.RiskScore > 0 {
			scored++
		}
	}
	assert.Positive(t, scored, "seeded mock fleet always contains violating resources")
}
