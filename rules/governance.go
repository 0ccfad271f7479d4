package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finlens/finlens/types"
)

func checkTags(r types.Resource) []Finding {
	var findings []Finding

	if missing := r.MissingMandatoryTags(); len(missing) > 0 {
		findings = append(findings, Finding{
			RuleID:      "TAG-001",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("%s %s is missing mandatory tags: %s.", r.Type, r.ID, strings.Join(missing, ", ")),
			Remediation: "Apply tags: Environment, Owner, Project for cost attribution and accountability.",
		})
	}

	var empty []string
	for _, tag := range types.MandatoryTags {
		if v, ok := r.Tags[tag]; ok && v == "" {
			empty = append(empty, tag)
		}
	}
	if len(empty) > 0 {
		sort.Strings(empty)
		findings = append(findings, Finding{
			RuleID:      "TAG-002",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("%s %s has empty mandatory tag values: %s.", r.Type, r.ID, strings.Join(empty, ", ")),
			Remediation: "Ensure all mandatory tags have meaningful non-empty values.",
		})
	}

	return findings
}

// checkSecurityGroups inspects the instance's effective ingress rules,
// reported by the provider as a list of ports open to 0.0.0.0/0.
func checkSecurityGroups(r types.Resource) []Finding {
	if r.State != "running" {
		return nil
	}

	open, ok := r.Raw["open_ports"]
	if !ok {
		return nil
	}
	ports := map[int]bool{}
	switch v := open.(type) {
	case []int:
		for _, p := range v {
			ports[p] = true
		}
	case []any:
		for _, p := range v {
			switch n := p.(type) {
			case int:
				ports[n] = true
			case float64:
				ports[int(n)] = true
			}
		}
	}

	var findings []Finding
	if ports[22] {
		findings = append(findings, Finding{
			RuleID:      "SG-001",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("EC2 %s has security group allowing SSH (port 22) from 0.0.0.0/0.", r.ID),
			Remediation: "Restrict SSH access to known IPs or use AWS Systems Manager Session Manager.",
		})
	}
	if ports[3389] {
		findings = append(findings, Finding{
			RuleID:      "SG-002",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("EC2 %s has security group allowing RDP (port 3389) from 0.0.0.0/0.", r.ID),
			Remediation: "Restrict RDP to a VPN or bastion host range. Consider SSM instead.",
		})
	}
	return findings
}

func checkEncryption(r types.Resource) []Finding {
	var findings []Finding

	if enc, ok := r.RawBool("storage_encrypted"); ok && !enc {
		findings = append(findings, Finding{
			RuleID:      "ENC-001",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("RDS instance %s storage is not encrypted.", r.ID),
			Remediation: "Enable encryption by creating a new encrypted snapshot and restoring.",
		})
	}

	if public, _ := r.RawBool("publicly_accessible"); public {
		findings = append(findings, Finding{
			RuleID:      "ENC-002",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("RDS instance %s is publicly accessible.", r.ID),
			Remediation: "Move RDS to private subnet. Remove public accessibility.",
		})
	}

	return findings
}
