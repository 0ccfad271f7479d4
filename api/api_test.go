package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/finlens/costs"
	"github.com/finlens/finlens/orchestrator"
	"github.com/finlens/finlens/providers"
	_ "github.com/finlens/finlens/providers/mock"
	"github.com/finlens/finlens/storage"
	"github.com/finlens/finlens/types"
)

type fixture struct {
	store  *storage.Store
	orch   *orchestrator.Orchestrator
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	provider, err := providers.New(context.Background(), "mock", providers.Config{Seed: 42})
	require.NoError(t, err)

	orch := orchestrator.NewOrchestrator(store, provider).
		WithCostFetcher(costs.NewMockFetcher(42))

	api := NewServer(store, orch, Defaults{
		Regions:       []string{"us-east-1"},
		ResourceTypes: []string{"EC2", "S3", "RDS"},
	})
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	return &fixture{store: store, orch: orch, server: server}
}

// completedScan runs a full scan synchronously and returns its session.
func (f *fixture) completedScan(t *testing.T, regions []string) *types.ScanSession {
	t.Helper()
	session := types.NewScanSession(regions, []string{"EC2", "S3", "RDS"}, "test")
	require.NoError(t, f.store.PutSession(session))
	_, err := f.orch.Run(context.Background(), session)
	require.NoError(t, err)
	return session
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(f.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.NewDecoder(resp.Body).Decode(&body)
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestTriggerScan_Accepted(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/api/v1/scans", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["scan_id"])
	assert.Equal(t, "pending", body["status"])

	// The session is persisted before the 202 goes out.
	session, err := f.store.GetSession(body["scan_id"])
	require.NoError(t, err)
	assert.Equal(t, "api", session.TriggeredBy)

	// The background run finishes eventually.
	require.Eventually(t, func() bool {
		s, err := f.store.GetSession(body["scan_id"])
		return err == nil && s.Terminal()
	}, 10*time.Second, 50*time.Millisecond)
}

func TestTriggerScan_RejectsUnknownType(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/api/v1/scans", "application/json",
		strings.NewReader(`{"resource_types": ["FOO"]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTriggerScan_RejectsMalformedBody(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL+"/api/v1/scans", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListScans(t *testing.T) {
	f := newFixture(t)
	f.completedScan(t, []string{"us-east-1"})
	f.completedScan(t, []string{"eu-west-1"})

	resp, body := f.get(t, "/api/v1/scans?limit=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["scans"], 1)
}

func TestGetScan_NotFound(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/api/v1/scans/does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "scan not found", body["error"])
}

func TestListResources_FilterAndPaging(t *testing.T) {
	f := newFixture(t)
	session := f.completedScan(t, []string{"us-east-1"})

	resp, body := f.get(t, "/api/v1/scans/"+session.ID+"/resources?type=EC2&limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resources := body["resources"].([]any)
	assert.LessOrEqual(t, len(resources), 2)
	for _, raw := range resources {
		r := raw.(map[string]any)
		assert.Equal(t, "EC2", r["resource_type"])
	}
	assert.Greater(t, body["total"], float64(0))
}

func TestListViolations_SeverityFilter(t *testing.T) {
	f := newFixture(t)
	session := f.completedScan(t, []string{"us-east-1"})

	resp, body := f.get(t, "/api/v1/scans/"+session.ID+"/violations?severity=LOW&limit=500")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for _, raw := range body["violations"].([]any) {
		v := raw.(map[string]any)
		assert.Equal(t, "LOW", v["severity"])
	}
}

func TestRecommendations_TotalMatchesSession(t *testing.T) {
	f := newFixture(t)
	session := f.completedScan(t, []string{"us-east-1"})

	resp, body := f.get(t, "/api/v1/scans/"+session.ID+"/recommendations")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	persisted, err := f.store.GetSession(session.ID)
	require.NoError(t, err)
	assert.InDelta(t, persisted.TotalMonthlyWaste, body["total_monthly_savings"].(float64), 0.01)
}

func TestCompliance_LazyRecompute(t *testing.T) {
	f := newFixture(t)

	// A session persisted without the compliance artifact, as if the
	// stage had failed.
	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2"}, "test")
	require.NoError(t, f.store.PutSession(session))
	require.NoError(t, f.store.SaveViolations(session.ID, []types.Violation{
		{ScanID: session.ID, ResourceID: "i-1", RuleID: "EC2-001", Severity: types.SeverityMedium},
	}))

	resp, body := f.get(t, "/api/v1/scans/"+session.ID+"/compliance")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_violations"])

	// The recomputed report was persisted.
	report, err := f.store.GetCompliance(session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalViolations)
}

func TestRisk_LazyRecompute(t *testing.T) {
	f := newFixture(t)

	session := types.NewScanSession([]string{"us-east-1"}, []string{"EC2"}, "test")
	require.NoError(t, f.store.PutSession(session))
	require.NoError(t, f.store.SaveResources(session.ID, []types.Resource{
		{ID: "i-1", Type: types.TypeEC2, Region: "us-east-1"},
	}))
	require.NoError(t, f.store.SaveViolations(session.ID, []types.Violation{
		{ScanID: session.ID, ResourceID: "i-1", RuleID: "SG-001", Severity: types.SeverityCritical},
	}))

	resp, body := f.get(t, "/api/v1/scans/"+session.ID+"/risk")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, body["overall_risk_score"], float64(0))

	report, err := f.store.GetRisk(session.ID)
	require.NoError(t, err)
	assert.Equal(t, report.OverallScore, int(body["overall_risk_score"].(float64)))
}

func TestDiff(t *testing.T) {
	f := newFixture(t)
	a := f.completedScan(t, []string{"us-east-1"})
	b := f.completedScan(t, []string{"us-east-1", "eu-west-1"})

	resp, body := f.get(t, "/api/v1/scans/diff?scan_a="+a.ID+"&scan_b="+b.ID)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "summary")

	// The second scan covers an extra region, so resources were added.
	summary := body["summary"].(map[string]any)
	assert.Greater(t, summary["resources_added"], float64(0))
}

func TestDiff_MissingParams(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.get(t, "/api/v1/scans/diff?scan_a=only-one")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDiff_UnknownScan(t *testing.T) {
	f := newFixture(t)
	a := f.completedScan(t, []string{"us-east-1"})
	resp, _ := f.get(t, "/api/v1/scans/diff?scan_a="+a.ID+"&scan_b=missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExports(t *testing.T) {
	f := newFixture(t)
	session := f.completedScan(t, []string{"us-east-1"})

	resp, err := http.Get(f.server.URL + "/api/v1/scans/" + session.ID + "/export/violations.csv")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "violations-")

	resp, err = http.Get(f.server.URL + "/api/v1/scans/" + session.ID + "/export/report.html")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp, err = http.Get(f.server.URL + "/api/v1/scans/" + session.ID + "/export/bundle.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var bundle map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bundle))
	assert.Contains(t, bundle, "summary")
}
