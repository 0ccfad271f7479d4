package rules

import (
	"fmt"

	"github.com/finlens/finlens/types"
)

// Large RDS classes flagged for over-provisioning under low CPU.
var largeDBClasses = map[string]bool{
	"db.r5.xlarge": true, "db.r5.2xlarge": true, "db.r5.4xlarge": true, "db.r5.8xlarge": true,
	"db.r6g.xlarge": true, "db.r6g.2xlarge": true, "db.r6g.4xlarge": true,
	"db.m5.xlarge": true, "db.m5.2xlarge": true, "db.m5.4xlarge": true,
	"db.m6g.xlarge": true, "db.m6g.2xlarge": true,
}

func evaluateRDS(r types.Resource) []Finding {
	// Operational metrics only make sense for running databases.
	if r.State != "available" {
		return nil
	}

	var findings []Finding
	class := r.RawString("instance_class")

	avgConnections, _ := r.RawFloat("avg_connections")
	if avgConnections < 5.0 {
		findings = append(findings, Finding{
			RuleID:      "RDS-001",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("RDS instance %s (%s) had an average of %.1f connections over the last 7 days - likely idle or unused.", r.ID, class, avgConnections),
			Remediation: "Verify whether this database serves any application. If unused, stop the instance or take a final snapshot and delete it.",
		})
	}

	avgCPU, _ := r.RawFloat("avg_cpu_percent")
	if largeDBClasses[class] && avgCPU < 20.0 {
		findings = append(findings, Finding{
			RuleID:      "RDS-002",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("RDS instance %s is a %s with only %.1f%% avg CPU utilization - likely over-provisioned.", r.ID, class, avgCPU),
			Remediation: "Downsize to the next smaller instance class to reduce compute cost by ~50%. Use a blue/green deployment for zero-downtime resize.",
		})
	}

	if autoscaling, _ := r.RawBool("storage_autoscaling_enabled"); !autoscaling {
		findings = append(findings, Finding{
			RuleID:      "RDS-003",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("RDS instance %s does not have storage autoscaling enabled.", r.ID),
			Remediation: "Enable RDS storage autoscaling by setting MaxAllocatedStorage to prevent storage-full outages.",
		})
	}

	return findings
}
