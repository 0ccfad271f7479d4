package rules

import (
	"fmt"

	"github.com/finlens/finlens/types"
)

func evaluateCloudFront(r types.Resource) []Finding {
	var findings []Finding

	domain := r.RawString("domain_name")
	if domain == "" {
		domain = r.ID
	}

	if waf, _ := r.RawBool("has_waf"); !waf {
		findings = append(findings, Finding{
			RuleID:      "CF-001",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("CloudFront distribution '%s' does not have a WAF (Web ACL) attached.", domain),
			Remediation: "Attach an AWS WAF Web ACL to protect against common web attacks (SQLi, XSS, L7 DDoS).",
		})
	}

	if httpsOnly, ok := r.RawBool("https_only"); ok && !httpsOnly {
		findings = append(findings, Finding{
			RuleID:      "CF-002",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("CloudFront distribution '%s' allows HTTP traffic - data is transmitted in plaintext.", domain),
			Remediation: "Set Viewer Protocol Policy to 'Redirect HTTP to HTTPS' or 'HTTPS Only'.",
		})
	}

	if geo, _ := r.RawBool("has_geo_restriction"); !geo {
		findings = append(findings, Finding{
			RuleID:      "CF-003",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("CloudFront distribution '%s' has no geo-restriction configured.", domain),
			Remediation: "Consider adding geo-restriction if your service is not intended for all geographies.",
		})
	}

	if requests, ok := r.RawFloat("requests_30d"); ok && requests == 0 {
		findings = append(findings, Finding{
			RuleID:      "CF-004",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("CloudFront distribution '%s' has had 0 requests in the last 30 days - may be idle.", domain),
			Remediation: "Review if this distribution is still needed. Disable or delete if unused to avoid baseline costs.",
		})
	}

	if logging, _ := r.RawBool("logging_enabled"); !logging {
		findings = append(findings, Finding{
			RuleID:      "CF-005",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("CloudFront distribution '%s' does not have access logging enabled.", domain),
			Remediation: "Enable CloudFront access logs delivered to an S3 bucket for audit and threat detection.",
		})
	}

	return findings
}

// evaluateCloudWatch handles both log groups and alarms. The two kinds
// are distinguished by which name key the raw data carries.
func evaluateCloudWatch(r types.Resource) []Finding {
	if r.RawString("log_group_name") != "" {
		return evaluateLogGroup(r)
	}
	if r.RawString("alarm_name") != "" {
		return evaluateAlarm(r)
	}
	return nil
}

func evaluateLogGroup(r types.Resource) []Finding {
	if retention, _ := r.RawBool("has_retention"); retention {
		return nil
	}
	name := r.RawString("log_group_name")
	sizeMB, _ := r.RawFloat("size_mb")
	annualCost := sizeMB / 1024 * 0.03 * 12
	return []Finding{{
		RuleID:      "CW-001",
		Severity:    types.SeverityMedium,
		Message:     fmt.Sprintf("Log group '%s' has no retention policy. Current size: %.0fMB. Logs accumulate indefinitely.", name, sizeMB),
		Remediation: fmt.Sprintf("Set a retention policy (7–90 days). Estimated annual savings: ~$%.2f.", annualCost),
	}}
}

func evaluateAlarm(r types.Resource) []Finding {
	var findings []Finding
	name := r.RawString("alarm_name")

	if r.RawString("state") == "INSUFFICIENT_DATA" && r.RawInt("last_state_change_days") > 7 {
		findings = append(findings, Finding{
			RuleID:      "CW-002",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("Alarm '%s' has been in INSUFFICIENT_DATA state for %d days - metric may be misconfigured.", name, r.RawInt("last_state_change_days")),
			Remediation: "Review alarm configuration: verify metric namespace, dimensions, and data availability.",
		})
	}

	if actions, ok := r.RawBool("has_actions"); ok && !actions {
		findings = append(findings, Finding{
			RuleID:      "CW-003",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("Alarm '%s' has no actions configured - alerts will never be sent.", name),
			Remediation: "Add SNS notification or Auto Scaling action to the alarm so it triggers on state change.",
		})
	}

	return findings
}
