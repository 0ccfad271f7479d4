package diffengine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/finlens/types"
)

func scanInput(id string, resources []types.Resource, violations []types.Violation, recs []types.Recommendation) Input {
	return Input{
		Session: types.ScanSession{
			ID:        id,
			Status:    types.ScanCompleted,
			Regions:   []string{"us-east-1"},
			StartedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		Resources:       resources,
		Violations:      violations,
		Recommendations: recs,
	}
}

func TestCompare_AddedRemovedDisjoint(t *testing.T) {
	a := scanInput("a", []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, State: "running"},
		{ID: "i-2", Type: types.TypeEC2, State: "running"},
	}, nil, nil)
	b := scanInput("b", []types.Resource{
		{ID: "i-2", Type: types.TypeEC2, State: "running"},
		{ID: "i-3", Type: types.TypeEC2, State: "running"},
	}, nil, nil)

	res := Compare(a, b)

	require.Len(t, res.AddedResources, 1)
	require.Len(t, res.RemovedResources, 1)
	assert.Equal(t, "i-3", res.AddedResources[0].ID)
	assert.Equal(t, "i-1", res.RemovedResources[0].ID)

	for _, added := range res.AddedResources {
		for _, removed := range res.RemovedResources {
			assert.NotEqual(t, added.ID, removed.ID)
		}
	}
}

func TestCompare_StateChanges(t *testing.T) {
	a := scanInput("a", []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, State: "running", Region: "us-east-1"},
	}, nil, nil)
	b := scanInput("b", []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, State: "stopped", Region: "us-east-1"},
	}, nil, nil)

	res := Compare(a, b)

	require.Len(t, res.StateChanges, 1)
	assert.Equal(t, "running", res.StateChanges[0].OldState)
	assert.Equal(t, "stopped", res.StateChanges[0].NewState)
	assert.Empty(t, res.AddedResources)
	assert.Empty(t, res.RemovedResources)
}

func TestCompare_ViolationsKeyedByResourceAndRule(t *testing.T) {
	a := scanInput("a", nil, []types.Violation{
		{ResourceID: "i-1", RuleID: "EC2-001", Severity: types.SeverityMedium},
		{ResourceID: "i-1", RuleID: "EC2-003", Severity: types.SeverityLow},
	}, nil)
	b := scanInput("b", nil, []types.Violation{
		{ResourceID: "i-1", RuleID: "EC2-003", Severity: types.SeverityLow},
		{ResourceID: "i-1", RuleID: "EC2-002", Severity: types.SeverityHigh},
	}, nil)

	res := Compare(a, b)

	require.Len(t, res.NewViolations, 1)
	require.Len(t, res.FixedViolations, 1)
	assert.Equal(t, "EC2-002", res.NewViolations[0].RuleID)
	assert.Equal(t, "EC2-001", res.FixedViolations[0].RuleID)
	assert.Equal(t, 0, res.Summary.NetViolationChange)
}

func TestCompare_WasteDelta(t *testing.T) {
	a := scanInput("a", nil, nil, []types.Recommendation{
		{EstimatedMonthlySavings: 100.00},
	})
	b := scanInput("b", nil, nil, []types.Recommendation{
		{EstimatedMonthlySavings: 40.00},
		{EstimatedMonthlySavings: 12.50},
	})

	res := Compare(a, b)
	assert.Equal(t, -47.50, res.Summary.WasteDelta)
}

func TestCompare_SwapInvertsDirection(t *testing.T) {
	a := scanInput("a", []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, State: "running"},
	}, []types.Violation{
		{ResourceID: "i-1", RuleID: "EC2-002", Severity: types.SeverityHigh},
	}, nil)
	b := scanInput("b", []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, State: "running"},
		{ID: "i-2", Type: types.TypeEC2, State: "running"},
	}, nil, nil)

	forward := Compare(a, b)
	backward := Compare(b, a)

	assert.Equal(t, forward.Summary.ResourcesAdded, backward.Summary.ResourcesRemoved)
	assert.Equal(t, forward.Summary.ResourcesRemoved, backward.Summary.ResourcesAdded)
	assert.Equal(t, forward.Summary.NewViolations, backward.Summary.FixedViolations)
	assert.Equal(t, forward.Summary.FixedViolations, backward.Summary.NewViolations)
}

func TestCompare_TruncatesDetailNotSummary(t *testing.T) {
	var resources []types.Resource
	for i := 0; i < 150; i++ {
		resources = append(resources, types.Resource{
			ID:   fmt.Sprintf("i-%03d", i),
			Type: types.TypeEC2,
		})
	}
	res := Compare(scanInput("a", nil, nil, nil), scanInput("b", resources, nil, nil))

	assert.Equal(t, 150, res.Summary.ResourcesAdded)
	assert.Len(t, res.AddedResources, 100)
}

func TestCompare_TypeChanges(t *testing.T) {
	a := scanInput("a", []types.Resource{
		{ID: "vol-1", Type: types.TypeEBS},
	}, nil, nil)
	b := scanInput("b", []types.Resource{
		{ID: "i-1", Type: types.TypeEC2},
		{ID: "i-2", Type: types.TypeEC2},
	}, nil, nil)

	res := Compare(a, b)
	require.Len(t, res.TypeChanges, 2)

	byType := map[types.ResourceType]TypeChange{}
	for _, tc := range res.TypeChanges {
		byType[tc.Type] = tc
	}
	assert.Equal(t, 2, byType[types.TypeEC2].Added)
	assert.Equal(t, 1, byType[types.TypeEBS].Removed)
}

func TestCompare_Identical(t *testing.T) {
	shared := []types.Resource{{ID: "i-1", Type: types.TypeEC2, State: "running"}}
	res := Compare(scanInput("a", shared, nil, nil), scanInput("b", shared, nil, nil))

	assert.Zero(t, res.Summary.ResourcesAdded)
	assert.Zero(t, res.Summary.ResourcesRemoved)
	assert.Zero(t, res.Summary.StateChanges)
	assert.Zero(t, res.Summary.WasteDelta)
}
