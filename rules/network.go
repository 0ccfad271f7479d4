package rules

import (
	"fmt"

	"github.com/finlens/finlens/types"
)

// NAT Gateway fixed cost, before data transfer charges.
const natFixedMonthlyCost = 32.40

func evaluateLB(r types.Resource) []Finding {
	var findings []Finding

	lbType := r.RawString("lb_type")
	if lbType == "" {
		lbType = "LB"
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}
	listeners := r.RawInt("listener_count")
	avgReq, _ := r.RawFloat("avg_request_count_per_day")

	if listeners > 0 && avgReq < 10.0 {
		findings = append(findings, Finding{
			RuleID:      "LB-001",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("%s '%s' (%s) averages %.1f requests/day over the last 7 days - likely unused or abandoned.", lbType, name, r.ID, avgReq),
			Remediation: "Review target groups and associated services. Delete unused load balancers to save ~$16–$22/month in fixed charges.",
		})
	}

	if listeners == 0 {
		findings = append(findings, Finding{
			RuleID:      "LB-002",
			Severity:    types.SeverityCritical,
			Message:     fmt.Sprintf("%s '%s' (%s) has zero listeners configured. It serves no traffic and accumulates fixed hourly charges.", lbType, name, r.ID),
			Remediation: "Delete this load balancer. A load balancer with no listeners is an orphaned resource.",
		})
	}

	return findings
}

func evaluateNAT(r types.Resource) []Finding {
	dataGB, _ := r.RawFloat("data_transfer_gb")
	if dataGB >= 1.0 {
		return nil
	}
	name := r.Name
	if name == "" {
		name = r.ID
	}
	return []Finding{{
		RuleID:      "NAT-001",
		Severity:    types.SeverityHigh,
		Message:     fmt.Sprintf("NAT Gateway '%s' (%s) transferred only %.3f GB over the last 7 days - extremely low utilization for a resource costing ~$%.2f/month in fixed charges.", name, r.ID, dataGB, natFixedMonthlyCost),
		Remediation: fmt.Sprintf("Replace with a VPC Endpoint for AWS services or remove the NAT Gateway if no outbound internet access is required. Potential saving: ~$%.2f+/month.", natFixedMonthlyCost),
	}}
}
