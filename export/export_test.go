package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/finlens/types"
)

func sampleSession() *types.ScanSession {
	completed := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)
	return &types.ScanSession{
		ID:                "scan-0123456789abcdef",
		Status:            types.ScanCompleted,
		Regions:           []string{"us-east-1", "eu-west-1"},
		StartedAt:         completed.Add(-2 * time.Minute),
		CompletedAt:       &completed,
		ResourceCount:     12,
		ViolationCount:    3,
		TotalMonthlyWaste: 86.40,
		OverallRiskScore:  55,
		RiskLevel:         types.RiskHigh,
	}
}

func sampleViolations() []types.Violation {
	return []types.Violation{
		{
			RuleID: "EC2-002", Severity: types.SeverityHigh,
			ResourceType: types.TypeEC2, ResourceID: "i-abc123",
			Region: "us-east-1", Message: "Instance idle, avg CPU 1.2%",
			Remediation: "Downsize or terminate the instance",
		},
		{
			RuleID: "S3-001", Severity: types.SeverityCritical,
			ResourceType: types.TypeS3, ResourceID: "bucket-with, comma",
			Region: "us-east-1", Message: `Bucket allows public access, including "listing"`,
		},
	}
}

func sampleRecs() []types.Recommendation {
	return []types.Recommendation{
		{
			Category: "Compute", RuleID: "EC2-002", ResourceType: types.TypeEC2,
			ResourceID: "i-abc123", Region: "us-east-1",
			Title: "Downsize idle EC2 instance", Action: "resize",
			EstimatedMonthlySavings: 49.06, Confidence: "high",
			Severity: types.SeverityHigh,
		},
		{
			Category: "Governance", RuleID: "TAG-001", ResourceType: types.TypeS3,
			ResourceID: "bucket-1", Region: "us-east-1",
			Title: "Add mandatory tags", Action: "tag",
			Severity: types.SeverityLow,
		},
	}
}

func TestViolationsCSV_RoundTrips(t *testing.T) {
	out, err := ViolationsCSV(sampleViolations())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, violationColumns, records[0])
	assert.Equal(t, "EC2-002", records[1][0])
	// Fields with commas and quotes survive the round trip.
	assert.Equal(t, "bucket-with, comma", records[2][3])
	assert.Equal(t, `Bucket allows public access, including "listing"`, records[2][5])
}

func TestViolationsCSV_EmptyStillHasHeader(t *testing.T) {
	out, err := ViolationsCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(violationColumns, ",")+"\r\n", string(out))
}

func TestRecommendationsCSV(t *testing.T) {
	out, err := RecommendationsCSV(sampleRecs())
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "49.06", records[1][8])
	assert.Equal(t, "0.00", records[2][8])
}

func TestJSONBundle(t *testing.T) {
	out, err := JSONBundle(sampleSession(), make([]types.Resource, 12),
		sampleViolations(), nil, sampleRecs())
	require.NoError(t, err)

	var bundle Bundle
	require.NoError(t, json.Unmarshal(out, &bundle))

	assert.Equal(t, "scan-0123456789abcdef", bundle.Scan.ID)
	assert.Equal(t, 12, bundle.Summary.TotalResources)
	assert.Equal(t, 2, bundle.Summary.TotalViolations)
	assert.Equal(t, 2, bundle.Summary.TotalRecommendations)
	assert.InDelta(t, 49.06, bundle.Summary.TotalMonthlySavings, 0.001)
	assert.NotEmpty(t, bundle.ExportedAt)
}

func TestHTMLReport_ContainsKeyFigures(t *testing.T) {
	costRecords := []types.CostRecord{
		{Service: "Amazon EC2", Region: "us-east-1", Amount: 1200},
		{Service: "Amazon EC2", Region: "eu-west-1", Amount: 300},
		{Service: "Amazon S3", Region: "us-east-1", Amount: 80},
	}

	out, err := HTMLReport(sampleSession(), sampleViolations(), costRecords, sampleRecs())
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "scan-0123456789abcdef")
	assert.Contains(t, html, "us-east-1, eu-west-1")
	assert.Contains(t, html, "2026-08-20 14:30:00 UTC")
	assert.Contains(t, html, "$49.06")
	// Per-service spend is aggregated across regions.
	assert.Contains(t, html, "$1500.00")
	assert.Contains(t, html, "EC2-002")
}

func TestHTMLReport_EscapesResourceFields(t *testing.T) {
	violations := []types.Violation{{
		RuleID: "S3-001", Severity: types.SeverityCritical,
		ResourceType: types.TypeS3, ResourceID: `<script>alert(1)</script>`,
		Region: "us-east-1", Message: "public",
	}}

	out, err := HTMLReport(sampleSession(), violations, nil, nil)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert(1)</script>")
}

func TestHTMLReport_TruncatesDetailNotCounts(t *testing.T) {
	violations := make([]types.Violation, 250)
	for i := range violations {
		violations[i] = types.Violation{
			RuleID: "TAG-001", Severity: types.SeverityLow,
			ResourceType: types.TypeEC2, ResourceID: fmt.Sprintf("i-%04d", i),
			Region: "us-east-1", Message: "missing tags",
		}
	}

	out, err := HTMLReport(sampleSession(), violations, nil, nil)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "Full Violations Log (200 of 250)")
	assert.Contains(t, html, "i-0199")
	assert.NotContains(t, html, "i-0200")
}
