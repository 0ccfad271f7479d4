package rules

import (
	"fmt"
	"strings"

	"github.com/finlens/finlens/types"
)

// rightsizeMap suggests the next smaller type for oversized instances.
var rightsizeMap = map[string]string{
	"m5.xlarge":   "m5.large",
	"m5.2xlarge":  "m5.xlarge",
	"m5.4xlarge":  "m5.2xlarge",
	"m6i.xlarge":  "m6i.large",
	"m6i.2xlarge": "m6i.xlarge",
	"c5.xlarge":   "c5.large",
	"c5.2xlarge":  "c5.xlarge",
	"c5.4xlarge":  "c5.2xlarge",
	"c6i.xlarge":  "c6i.large",
	"c6i.2xlarge": "c6i.xlarge",
	"r5.xlarge":   "r5.large",
	"r5.2xlarge":  "r5.xlarge",
	"r5.4xlarge":  "r5.2xlarge",
	"t3.medium":   "t3.small",
	"t3.large":    "t3.medium",
	"t3.xlarge":   "t3.large",
}

// Families eligible for Spot (stateless, fault-tolerant workloads).
var spotEligibleFamilies = map[string]bool{
	"t3": true, "t3a": true, "t4g": true,
	"m5": true, "m5a": true, "m6i": true, "m6a": true,
	"c5": true, "c5a": true, "c6i": true, "c6a": true,
	"r5": true, "r5a": true, "r6i": true,
}

// Families with strong Reserved Instance savings on sustained usage.
var riCandidateFamilies = map[string]bool{
	"m5": true, "m6i": true, "c5": true, "c6i": true, "r5": true, "r6i": true, "t3": true,
}

func instanceFamily(instanceType string) string {
	if i := strings.IndexByte(instanceType, '.'); i > 0 {
		return instanceType[:i]
	}
	return instanceType
}

func evaluateEC2(r types.Resource) []Finding {
	var findings []Finding

	itype := r.RawString("instance_type")
	family := instanceFamily(itype)
	avgCPU, hasCPU := r.RawFloat("avg_cpu_percent")
	if !hasCPU {
		avgCPU = 100.0
	}
	inASG, _ := r.RawBool("in_asg")
	running := r.State == "running"

	if r.State == "stopped" {
		findings = append(findings, Finding{
			RuleID:      "EC2-001",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("EC2 instance %s is stopped but still incurring EBS storage costs.", r.ID),
			Remediation: "Terminate idle stopped instances or create an AMI and terminate.",
		})
	}

	if running && avgCPU < 5.0 {
		findings = append(findings, Finding{
			RuleID:      "EC2-002",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("EC2 instance %s has avg CPU of %.1f%% - likely idle.", r.ID, avgCPU),
			Remediation: "Rightsize to a smaller instance type or terminate if unused.",
		})
	}

	if missing := r.MissingMandatoryTags(); len(missing) > 0 {
		findings = append(findings, Finding{
			RuleID:      "EC2-003",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("EC2 instance %s missing tags: %s.", r.ID, strings.Join(missing, ", ")),
			Remediation: "Apply mandatory tags for cost attribution and ownership tracking.",
		})
	}

	if publicIP := r.RawString("public_ip"); publicIP != "" && running {
		findings = append(findings, Finding{
			RuleID:      "EC2-004",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("EC2 instance %s has a public IP (%s).", r.ID, publicIP),
			Remediation: "Move behind a load balancer. Remove direct public IP if not required.",
		})
	}

	if suggested, ok := rightsizeMap[itype]; ok && running && avgCPU < 20.0 {
		findings = append(findings, Finding{
			RuleID:      "EC2-005",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("EC2 instance %s is a %s with only %.1f%% avg CPU - likely oversized.", r.ID, itype, avgCPU),
			Remediation: fmt.Sprintf("Consider rightsizing from %s to %s (estimated ~50%% cost saving).", itype, suggested),
		})
	}

	if running && !inASG {
		findings = append(findings, Finding{
			RuleID:      "EC2-006",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("EC2 instance %s (%s) is running outside an Auto Scaling Group.", r.ID, itype),
			Remediation: "Consider migrating to an ASG for automatic recovery, scale-in during low demand, and Spot/Mixed capacity support.",
		})
	}

	spotEligible, _ := r.RawBool("spot_eligible")
	if !spotEligible {
		spotEligible = spotEligibleFamilies[family]
	}
	if running && spotEligible && !inASG && avgCPU < 40.0 {
		findings = append(findings, Finding{
			RuleID:      "EC2-007",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("EC2 instance %s is a %s (%.1f%% avg CPU) eligible for Spot pricing but running as On-Demand.", r.ID, itype, avgCPU),
			Remediation: fmt.Sprintf("Migrate to a Spot instance or use an ASG with Spot/On-Demand mix. Spot pricing for %s typically saves 60–70%% vs On-Demand.", family),
		})
	}

	riCandidate, _ := r.RawBool("ri_candidate")
	launchDays := r.RawInt("launch_days_ago")
	if running && riCandidate && riCandidateFamilies[family] {
		findings = append(findings, Finding{
			RuleID:      "EC2-008",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("EC2 instance %s (%s) has been running for %d days as On-Demand. It is a strong Reserved Instance candidate.", r.ID, itype, launchDays),
			Remediation: fmt.Sprintf("Purchase a 1-year Convertible RI for %s to save ~30–40%% vs On-Demand.", itype),
		})
	}

	return findings
}
