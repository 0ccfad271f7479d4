package rules

import (
	"fmt"

	"github.com/finlens/finlens/types"
)

func evaluateEBS(r types.Resource) []Finding {
	var findings []Finding

	if r.State == "available" {
		sizeGB := r.RawInt("size_gb")
		findings = append(findings, Finding{
			RuleID:      "EBS-001",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("EBS volume %s (%dGB) is unattached. Estimated waste: $%.2f/month.", r.ID, sizeGB, float64(sizeGB)*0.10),
			Remediation: "Snapshot and delete unattached volumes. Consider lifecycle policies.",
		})
	}

	// Missing encryption attribute is treated as encrypted: only an
	// explicit false should fire.
	if enc, ok := r.RawBool("encrypted"); ok && !enc {
		findings = append(findings, Finding{
			RuleID:      "EBS-002",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("EBS volume %s is not encrypted at rest.", r.ID),
			Remediation: "Create an encrypted snapshot and restore as a new encrypted volume.",
		})
	}

	if r.RawString("volume_type") == "gp2" {
		findings = append(findings, Finding{
			RuleID:      "EBS-003",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("EBS volume %s uses gp2. gp3 is ~20%% cheaper with better baseline performance.", r.ID),
			Remediation: "Modify volume type from gp2 to gp3 (zero downtime).",
		})
	}

	return findings
}

func evaluateS3(r types.Resource) []Finding {
	var findings []Finding

	if blocked, ok := r.RawBool("public_access_blocked"); ok && !blocked {
		findings = append(findings, Finding{
			RuleID:      "S3-001",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("S3 bucket %s does not have public access block enabled.", r.ID),
			Remediation: "Enable S3 Block Public Access at bucket level. Audit bucket policies.",
		})
	}

	if versioned, _ := r.RawBool("versioning_enabled"); !versioned {
		findings = append(findings, Finding{
			RuleID:      "S3-002",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("S3 bucket %s does not have versioning enabled.", r.ID),
			Remediation: "Enable versioning to protect against accidental deletion.",
		})
	}

	if enc, _ := r.RawBool("encryption_enabled"); !enc {
		findings = append(findings, Finding{
			RuleID:      "S3-003",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("S3 bucket %s does not have server-side encryption enabled.", r.ID),
			Remediation: "Enable SSE-S3 or SSE-KMS encryption on the bucket.",
		})
	}

	if lifecycle, _ := r.RawBool("has_lifecycle_policy"); !lifecycle {
		findings = append(findings, Finding{
			RuleID:      "S3-004",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("S3 bucket %s has no lifecycle policy configured.", r.ID),
			Remediation: "Add a lifecycle policy to expire old objects/versions and reduce storage cost.",
		})
	}

	if days := r.RawInt("last_accessed_days"); days > 90 {
		findings = append(findings, Finding{
			RuleID:      "S3-005",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("S3 bucket %s has had no measurable access in %d days. It may be idle.", r.ID, days),
			Remediation: "Review bucket contents and consider archiving to S3 Glacier or deleting if unused.",
		})
	}

	return findings
}

func evaluateEIP(r types.Resource) []Finding {
	if associated, _ := r.RawBool("associated"); associated {
		return nil
	}
	return []Finding{{
		RuleID:      "EIP-001",
		Severity:    types.SeverityHigh,
		Message:     fmt.Sprintf("Elastic IP %s is not associated with any instance or NAT gateway.", r.ID),
		Remediation: "Release unassociated Elastic IPs to avoid charges (~$3.60/month each).",
	}}
}

func evaluateSnapshot(r types.Resource) []Finding {
	ageDays := r.RawInt("age_days")
	if ageDays <= 30 || r.RawString("ami_id") != "" {
		return nil
	}
	sizeGB := r.RawInt("size_gb")
	return []Finding{{
		RuleID:      "SNAP-001",
		Severity:    types.SeverityLow,
		Message:     fmt.Sprintf("Snapshot %s is %d days old and not linked to any AMI. Cost: ~$%.2f/month.", r.ID, ageDays, float64(sizeGB)*0.05),
		Remediation: "Review and delete snapshots older than 30 days not needed for recovery.",
	}}
}
