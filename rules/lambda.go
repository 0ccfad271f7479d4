package rules

import (
	"fmt"
	"strings"

	"github.com/finlens/finlens/types"
)

const gbSecondPrice = 0.0000166667

func evaluateLambda(r types.Resource) []Finding {
	var findings []Finding

	name := r.RawString("function_name")
	if name == "" {
		name = r.ID
	}

	invocations, hasInvocations := r.RawFloat("invocations_30d")
	memoryMB := r.RawInt("memory_mb")
	timeoutSec := r.RawInt("timeout_sec")
	avgDurationMS, _ := r.RawFloat("avg_duration_ms")
	lastModifiedDays := r.RawInt("last_modified_days")

	if hasInvocations && invocations == 0 && lastModifiedDays > 30 {
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-001",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("Lambda '%s' has had 0 invocations in 30 days and was last modified %d days ago.", name, lastModifiedDays),
			Remediation: "Review if this function is still needed. Delete unused Lambda functions to avoid maintenance overhead.",
		})
	}

	active := !hasInvocations || invocations != 0

	if memoryMB >= 1024 && avgDurationMS > 0 && avgDurationMS < 500 && active {
		waste := (float64(memoryMB) / 1024) * (avgDurationMS / 1000) * invocations * gbSecondPrice * 30
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-002",
			Severity:    types.SeverityMedium,
			Message:     fmt.Sprintf("Lambda '%s' has %dMB memory but avg duration of only %.0fms - likely over-provisioned.", name, memoryMB, avgDurationMS),
			Remediation: fmt.Sprintf("Use Lambda Power Tuning to right-size memory. Estimated waste: ~$%.2f/month.", waste),
		})
	}

	switch {
	case timeoutSec >= 900:
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-003",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("Lambda '%s' has maximum timeout (%ds). Functions that hang will incur full cost.", name, timeoutSec),
			Remediation: "Set a realistic timeout based on p99 duration to limit runaway execution costs.",
		})
	case timeoutSec > 0 && timeoutSec <= 3 && avgDurationMS > 2000:
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-003",
			Severity:    types.SeverityHigh,
			Message:     fmt.Sprintf("Lambda '%s' timeout (%ds) is too low for observed avg duration (%.0fms) - causing frequent timeouts.", name, timeoutSec, avgDurationMS),
			Remediation: "Increase Lambda timeout to at least 3x the p99 execution duration.",
		})
	}

	if dlq, _ := r.RawBool("has_dlq"); !dlq && active {
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-004",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("Lambda '%s' has no Dead Letter Queue (DLQ) configured.", name),
			Remediation: "Configure an SQS DLQ or SNS topic to capture failed async invocations.",
		})
	}

	if tracing, _ := r.RawBool("tracing_enabled"); !tracing && active {
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-005",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("Lambda '%s' does not have X-Ray active tracing enabled.", name),
			Remediation: "Enable X-Ray tracing to identify performance bottlenecks and errors.",
		})
	}

	if missing := r.MissingMandatoryTags(); len(missing) > 0 {
		findings = append(findings, Finding{
			RuleID:      "LAMBDA-006",
			Severity:    types.SeverityLow,
			Message:     fmt.Sprintf("Lambda '%s' missing tags: %s.", name, strings.Join(missing, ", ")),
			Remediation: "Apply mandatory tags for cost attribution and ownership tracking.",
		})
	}

	return findings
}
