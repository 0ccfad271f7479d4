package export

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/finlens/finlens/types"
)

const (
	maxReportViolations = 200
	maxReportRecs       = 100
)

var severityColors = map[string]string{
	"CRITICAL": "#ef4444",
	"HIGH":     "#f97316",
	"MEDIUM":   "#f59e0b",
	"LOW":      "#6b7280",
}

type severityPill struct {
	Severity string
	Count    int
	Color    string
}

type serviceBar struct {
	Service string
	Amount  float64
	Width   int
}

type reportData struct {
	ScanIDShort    string
	ScanID         string
	Regions        string
	CompletedAt    string
	GeneratedAt    string
	ResourceCount  int
	ViolationCount int
	RiskScore      int
	RiskLevel      string
	TotalSavings   float64
	SeverityPills  []severityPill
	TopServices    []serviceBar
	Violations     []types.Violation
	ViolationTotal int
	Recs           []types.Recommendation
	RecTotal       int
}

// HTMLReport renders a self-contained, print-ready HTML report. Detail
// tables are capped; header counts reflect the untruncated totals.
func HTMLReport(session *types.ScanSession, violations []types.Violation,
	costRecords []types.CostRecord, recs []types.Recommendation) ([]byte, error) {

	var savings float64
	for _, r := range recs {
		savings += r.EstimatedMonthlySavings
	}

	data := reportData{
		ScanIDShort:    short(session.ID),
		ScanID:         session.ID,
		Regions:        strings.Join(session.Regions, ", "),
		GeneratedAt:    time.Now().UTC().Format("2006-01-02 15:04") + " UTC",
		ResourceCount:  session.ResourceCount,
		ViolationCount: session.ViolationCount,
		RiskScore:      session.OverallRiskScore,
		RiskLevel:      string(session.RiskLevel),
		TotalSavings:   savings,
		SeverityPills:  buildSeverityPills(violations),
		TopServices:    buildServiceBars(costRecords),
		Violations:     truncateViolations(violations),
		ViolationTotal: len(violations),
		Recs:           truncateRecs(recs),
		RecTotal:       len(recs),
	}
	if session.CompletedAt != nil {
		data.CompletedAt = session.CompletedAt.UTC().Format("2006-01-02 15:04:05") + " UTC"
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func buildSeverityPills(violations []types.Violation) []severityPill {
	counts := make(map[string]int)
	for _, v := range violations {
		counts[string(v.Severity)]++
	}

	pills := make([]severityPill, 0, 4)
	for _, s := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
		pills = append(pills, severityPill{
			Severity: s,
			Count:    counts[s],
			Color:    severityColors[s],
		})
	}
	return pills
}

// buildServiceBars aggregates spend per service and renders the top 5
// as proportional bars.
func buildServiceBars(records []types.CostRecord) []serviceBar {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.Service] += r.Amount
	}

	bars := make([]serviceBar, 0, len(totals))
	for service, amount := range totals {
		bars = append(bars, serviceBar{Service: service, Amount: amount})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].Amount != bars[j].Amount {
			return bars[i].Amount > bars[j].Amount
		}
		return bars[i].Service < bars[j].Service
	})
	if len(bars) > 5 {
		bars = bars[:5]
	}

	if len(bars) > 0 && bars[0].Amount > 0 {
		max := bars[0].Amount
		for i := range bars {
			bars[i].Width = int(bars[i].Amount / max * 120)
		}
	}
	return bars
}

func truncateViolations(violations []types.Violation) []types.Violation {
	if len(violations) > maxReportViolations {
		return violations[:maxReportViolations]
	}
	return violations
}

func truncateRecs(recs []types.Recommendation) []types.Recommendation {
	if len(recs) > maxReportRecs {
		return recs[:maxReportRecs]
	}
	return recs
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"usd": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
	"sevColor": func(s types.Severity) string {
		if c, ok := severityColors[string(s)]; ok {
			return c
		}
		return "#6b7280"
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8"/>
  <meta name="viewport" content="width=device-width,initial-scale=1"/>
  <title>FinLens Report &mdash; {{.ScanIDShort}}</title>
  <style>
    *{ box-sizing:border-box; margin:0; padding:0 }
    body{ font-family:'Segoe UI',system-ui,sans-serif; color:#1e293b; background:#fff; font-size:13px; line-height:1.5 }
    .page{ max-width:1100px; margin:0 auto; padding:40px 48px }
    h1{ font-size:22px; font-weight:800; color:#0f172a; margin-bottom:4px }
    h2{ font-size:15px; font-weight:700; color:#0f172a; margin:28px 0 12px }
    .meta{ font-size:12px; color:#64748b; margin-bottom:28px }
    .kpi-grid{ display:grid; grid-template-columns:repeat(4,1fr); gap:16px; margin-bottom:28px }
    .kpi{ background:#f8fafc; border:1px solid #e2e8f0; border-radius:8px; padding:16px 18px }
    .kpi-val{ font-size:24px; font-weight:800; color:#0f172a; margin-bottom:2px }
    .kpi-label{ font-size:11px; color:#64748b; text-transform:uppercase; letter-spacing:.5px }
    .pills{ display:flex; gap:12px; margin-bottom:24px }
    table{ width:100%; border-collapse:collapse; margin-top:4px }
    th{ background:#f1f5f9; padding:8px 10px; text-align:left; font-size:11px; font-weight:700; text-transform:uppercase; letter-spacing:.5px; border-bottom:2px solid #e2e8f0; color:#475569 }
    td{ padding:8px 10px; border-bottom:1px solid #e2e8f0 }
    tr:nth-child(even) td{ background:#f8fafc }
    .footer{ margin-top:40px; padding-top:16px; border-top:1px solid #e2e8f0; font-size:11px; color:#94a3b8; display:flex; justify-content:space-between }
    @media print{ .page{ padding:20px 28px } h2{ margin-top:20px } @page{ margin:15mm } }
  </style>
</head>
<body>
<div class="page">
  <h1>FinLens Cloud Audit Report</h1>
  <div class="meta">Scan <code>{{.ScanID}}</code> &middot; Regions: {{.Regions}}{{if .CompletedAt}} &middot; Completed {{.CompletedAt}}{{end}}</div>

  <div class="kpi-grid">
    <div class="kpi"><div class="kpi-val">{{.ResourceCount}}</div><div class="kpi-label">Resources Scanned</div></div>
    <div class="kpi"><div class="kpi-val">{{.ViolationCount}}</div><div class="kpi-label">Violations Found</div></div>
    <div class="kpi"><div class="kpi-val">{{.RiskScore}}{{if .RiskLevel}} &middot; {{.RiskLevel}}{{end}}</div><div class="kpi-label">Risk Score</div></div>
    <div class="kpi"><div class="kpi-val">{{usd .TotalSavings}}</div><div class="kpi-label">Monthly Savings Potential</div></div>
  </div>

  <h2>Violations by Severity</h2>
  <div class="pills">
    {{range .SeverityPills}}
    <div style="background:{{.Color}}18;border:1px solid {{.Color}}44;border-radius:6px;padding:10px 20px;text-align:center">
      <div style="font-size:20px;font-weight:800;color:{{.Color}}">{{.Count}}</div>
      <div style="font-size:10px;font-weight:700;color:{{.Color}}">{{.Severity}}</div>
    </div>
    {{end}}
  </div>

  {{if .TopServices}}
  <h2>Top Services by MTD Spend</h2>
  <div style="margin-bottom:24px">
    {{range .TopServices}}
    <div style="display:flex;align-items:center;gap:10px;margin-bottom:8px">
      <div style="width:160px;font-size:12px;color:#475569">{{.Service}}</div>
      <div style="flex:1;background:#e2e8f0;border-radius:4px;height:8px">
        <div style="width:{{.Width}}px;max-width:100%;background:linear-gradient(90deg,#3b82f6,#8b5cf6);height:8px;border-radius:4px"></div>
      </div>
      <div style="font-size:12px;font-weight:700;color:#1e293b;min-width:80px;text-align:right">{{usd .Amount}}</div>
    </div>
    {{end}}
  </div>
  {{end}}

  <h2>Savings Recommendations ({{len .Recs}} of {{.RecTotal}} &middot; {{usd .TotalSavings}}/month)</h2>
  <table>
    <thead><tr><th>Category</th><th>Title</th><th>Severity</th><th style="text-align:right">Savings</th><th>Action</th></tr></thead>
    <tbody>
    {{range .Recs}}
    <tr>
      <td>{{.Category}}</td>
      <td>{{.Title}}</td>
      <td><span style="color:{{sevColor .Severity}};font-weight:700">{{.Severity}}</span></td>
      <td style="text-align:right">{{if gt .EstimatedMonthlySavings 0.0}}<strong style="color:#10b981">{{usd .EstimatedMonthlySavings}}</strong>{{else}}&mdash;{{end}}</td>
      <td>{{.Action}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>

  <h2>Full Violations Log ({{len .Violations}} of {{.ViolationTotal}})</h2>
  <table>
    <thead><tr><th>Rule</th><th>Severity</th><th>Type</th><th>Resource</th><th>Region</th><th>Message</th></tr></thead>
    <tbody>
    {{range .Violations}}
    <tr>
      <td>{{.RuleID}}</td>
      <td><span style="color:{{sevColor .Severity}};font-weight:700">{{.Severity}}</span></td>
      <td>{{.ResourceType}}</td>
      <td><code style="font-size:11px">{{.ResourceID}}</code></td>
      <td>{{.Region}}</td>
      <td>{{.Message}}</td>
    </tr>
    {{end}}
    </tbody>
  </table>

  <div class="footer">
    <span>Generated by FinLens</span>
    <span>{{.GeneratedAt}}</span>
  </div>
</div>
</body>
</html>
`))
