package alert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

func capturingServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var payloads []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		payloads = append(payloads, payload)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	return srv, &payloads
}

func criticalViolation(resourceID string) types.Violation {
	return types.Violation{
		ResourceID:   resourceID,
		ResourceType: types.TypeRDS,
		Region:       "us-east-1",
		RuleID:       "ENC-002",
		Severity:     types.SeverityCritical,
		Message:      "RDS instance is publicly accessible from the internet",
	}
}

func TestNotifyCritical_SendsWebhook(t *testing.T) {
	srv, payloads := capturingServer(t)
	n := NewNotifier(srv.URL, 0, telemetry.NewLogger("test"))

	n.NotifyCritical(context.Background(), "scan-abc12345", []types.Violation{
		criticalViolation("db-prod"),
		{RuleID: "EC2-002", Severity: types.SeverityHigh, ResourceID: "i-1", ResourceType: types.TypeEC2},
	})

	require.Len(t, *payloads, 1)
	payload := (*payloads)[0]
	assert.Contains(t, payload["text"], "1 CRITICAL")
	blocks, ok := payload["blocks"].([]any)
	require.True(t, ok)
	assert.Len(t, blocks, 2)
}

func TestNotifyCritical_SkipsWithoutCritical(t *testing.T) {
	srv, payloads := capturingServer(t)
	n := NewNotifier(srv.URL, 0, telemetry.NewLogger("test"))

	n.NotifyCritical(context.Background(), "scan-1", []types.Violation{
		{RuleID: "EC2-001", Severity: types.SeverityMedium},
	})

	assert.Empty(t, *payloads)
}

func TestNotifyCritical_DisabledWithoutURL(t *testing.T) {
	n := NewNotifier("", 0, telemetry.NewLogger("test"))
	assert.False(t, n.Enabled())
	n.NotifyCritical(context.Background(), "scan-1", []types.Violation{criticalViolation("r")})
}

func TestNotifyCritical_CapsDetailAtFive(t *testing.T) {
	srv, payloads := capturingServer(t)
	n := NewNotifier(srv.URL, 0, telemetry.NewLogger("test"))

	violations := make([]types.Violation, 8)
	for i := range violations {
		violations[i] = criticalViolation(string(rune('a' + i)))
	}
	n.NotifyCritical(context.Background(), "scan-1", violations)

	require.Len(t, *payloads, 1)
	raw, err := json.Marshal((*payloads)[0])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "and 3 more critical violations")
}

func TestNotifyBudget_ThresholdBehavior(t *testing.T) {
	srv, payloads := capturingServer(t)
	n := NewNotifier(srv.URL, 500, telemetry.NewLogger("test"))

	n.NotifyBudget(context.Background(), "scan-1", 200)
	assert.Empty(t, *payloads)

	n.NotifyBudget(context.Background(), "scan-1", 750.25)
	require.Len(t, *payloads, 1)
	assert.Contains(t, (*payloads)[0]["text"], "$750.25/month")
	assert.Contains(t, (*payloads)[0]["text"], "$500.00/month")
}

func TestNotify_ServerErrorDoesNotPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL, 1, telemetry.NewLogger("test"))
	n.NotifyCritical(context.Background(), "scan-1", []types.Violation{criticalViolation("r")})
	n.NotifyBudget(context.Background(), "scan-1", 10)
}
