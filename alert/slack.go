// Package alert delivers scan outcomes to a Slack incoming webhook.
// Delivery is best effort: failures are logged and never propagate into
// the scan pipeline.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

const maxDetailLines = 5

// Notifier posts formatted messages to a Slack incoming webhook. A zero
// webhook URL disables it entirely.
type Notifier struct {
	webhookURL      string
	budgetThreshold float64
	client          *http.Client
	logger          *telemetry.Logger
}

func NewNotifier(webhookURL string, budgetThreshold float64, logger *telemetry.Logger) *Notifier {
	return &Notifier{
		webhookURL:      webhookURL,
		budgetThreshold: budgetThreshold,
		client:          &http.Client{Timeout: 10 * time.Second},
		logger:          logger,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.webhookURL != ""
}

// NotifyCritical sends a summary of critical findings. No-op when the
// scan produced none.
func (n *Notifier) NotifyCritical(ctx context.Context, scanID string, violations []types.Violation) {
	if !n.Enabled() {
		return
	}

	var critical, high []types.Violation
	for _, v := range violations {
		switch v.Severity {
		case types.SeverityCritical:
			critical = append(critical, v)
		case types.SeverityHigh:
			high = append(high, v)
		}
	}
	if len(critical) == 0 {
		return
	}

	lines := []string{
		fmt.Sprintf("*:rotating_light: Cloud Audit Alert - Scan `%s`*", shortID(scanID)),
		fmt.Sprintf("Found *%d CRITICAL* and *%d HIGH* violations.\n", len(critical), len(high)),
	}
	for _, v := range critical[:min(len(critical), maxDetailLines)] {
		lines = append(lines,
			fmt.Sprintf("• `%s` - %s `%s` in _%s_", v.RuleID, v.ResourceType, truncate(v.ResourceID, 20), v.Region),
			fmt.Sprintf("  _%s_\n", truncate(v.Message, 120)),
		)
	}
	if len(critical) > maxDetailLines {
		lines = append(lines, fmt.Sprintf("…and %d more critical violations.", len(critical)-maxDetailLines))
	}

	payload := map[string]any{
		"text": fmt.Sprintf(":rotating_light: Cloud Audit: %d CRITICAL violations found", len(critical)),
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": strings.Join(lines, "\n")},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf("Scan ID: `%s` | Total violations: %d", scanID, len(violations))},
				},
			},
		},
	}

	if err := n.post(ctx, payload); err != nil {
		n.logger.Warn().Err(err).Str("scan_id", scanID).Msg("slack critical alert failed")
		return
	}
	n.logger.Info().Str("scan_id", scanID).Int("critical", len(critical)).Msg("slack alert sent")
}

// NotifyBudget alerts when detected monthly waste crosses the configured
// threshold. A zero threshold disables the check.
func (n *Notifier) NotifyBudget(ctx context.Context, scanID string, totalWaste float64) {
	if !n.Enabled() || n.budgetThreshold <= 0 || totalWaste < n.budgetThreshold {
		return
	}

	msg := fmt.Sprintf(
		":moneybag: *Budget Alert* - Scan `%s` detected *$%.2f/month* in cloud waste, "+
			"exceeding your threshold of *$%.2f/month*.\n"+
			"Review recommendations in the audit dashboard immediately.",
		shortID(scanID), totalWaste, n.budgetThreshold,
	)

	if err := n.post(ctx, map[string]any{"text": msg}); err != nil {
		n.logger.Warn().Err(err).Str("scan_id", scanID).Msg("slack budget alert failed")
	}
}

func (n *Notifier) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

func shortID(id string) string {
	return truncate(id, 8)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
