package rules

import (
	"fmt"

	"github.com/finlens/finlens/types"
)

func evaluateIAM(r types.Resource) []Finding {
	var findings []Finding

	username := r.RawString("username")
	if username == "" {
		username = r.ID
	}

	if isRoot, _ := r.RawBool("is_root"); isRoot {
		if mfa, ok := r.RawBool("has_mfa"); ok && !mfa {
			findings = append(findings, Finding{
				RuleID:      "IAM-002",
				Severity:    types.SeverityCritical,
				Message:     "AWS root account does not have MFA enabled.",
				Remediation: "Immediately enable MFA for the root account via IAM console account settings.",
			})
		}
		if days, ok := r.RawFloat("last_activity_days"); ok && days >= 0 && days <= 90 {
			findings = append(findings, Finding{
				RuleID:      "IAM-005",
				Severity:    types.SeverityCritical,
				Message:     fmt.Sprintf("AWS root account was used %d days ago. Root account should never be used for routine operations.", int(days)),
				Remediation: "Create IAM users/roles with least-privilege. Lock root account credentials and enable MFA.",
			})
		}
		return findings
	}

	if days := r.RawInt("last_activity_days"); days > 90 {
		findings = append(findings, Finding{
			RuleID:      "IAM-001",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("IAM user '%s' has had no activity for %d days.", username, days),
			Remediation: "Disable or delete unused IAM users. Implement periodic access review process.",
		})
	}

	if keyAge := r.RawInt("key_age_days"); keyAge > 90 {
		findings = append(findings, Finding{
			RuleID:      "IAM-003",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("IAM user '%s' has an access key that is %d days old (exceeds 90-day rotation policy).", username, keyAge),
			Remediation: "Rotate access keys immediately. Automate key rotation using AWS Secrets Manager.",
		})
	}

	if wildcard, _ := r.RawBool("has_wildcard_policy"); wildcard {
		findings = append(findings, Finding{
			RuleID:      "IAM-004",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("IAM user '%s' has a policy with wildcard (*) Action - full admin access.", username),
			Remediation: "Apply least-privilege: replace wildcard policies with specific resource/action permissions.",
		})
	}

	console, _ := r.RawBool("has_console_access")
	mfa, hasMFA := r.RawBool("has_mfa")
	if console && hasMFA && !mfa {
		findings = append(findings, Finding{
			RuleID:      "IAM-006",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("IAM user '%s' has console access but MFA is not enabled.", username),
			Remediation: "Enforce MFA for all IAM users with console access via IAM policy condition.",
		})
	}

	return findings
}
