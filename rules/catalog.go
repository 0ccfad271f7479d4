// Package rules holds the fixed catalog of per-type audit rules.
// Every rule is a pure predicate over a single resource: no I/O, no
// state, no visibility into other resources.
package rules

import (
	"github.com/finlens/finlens/types"
)

// Finding is one rule failure emitted during evaluation. The
// orchestrator turns findings into persisted Violations.
type Finding struct {
	RuleID      string
	Severity    types.Severity
	Message     string
	Remediation string
}

// RuleFunc evaluates one resource against the rules for its type.
type RuleFunc func(types.Resource) []Finding

// catalog maps every resource type to its rule function. Dispatch is
// by enum so a missing entry is caught by TestCatalog_CoversAllTypes
// rather than silently falling through at runtime.
var catalog = map[types.ResourceType]RuleFunc{
	types.TypeEC2:        evaluateEC2,
	types.TypeEBS:        evaluateEBS,
	types.TypeS3:         evaluateS3,
	types.TypeRDS:        evaluateRDS,
	types.TypeEIP:        evaluateEIP,
	types.TypeSnapshot:   evaluateSnapshot,
	types.TypeLB:         evaluateLB,
	types.TypeNAT:        evaluateNAT,
	types.TypeLambda:     evaluateLambda,
	types.TypeIAM:        evaluateIAM,
	types.TypeCloudFront: evaluateCloudFront,
	types.TypeCloudWatch: evaluateCloudWatch,
}

// Evaluate runs the type-specific rules plus the cross-cutting
// governance checks that apply to the resource's type.
func Evaluate(r types.Resource) []Finding {
	var findings []Finding
	if fn, ok := catalog[r.Type]; ok {
		findings = fn(r)
	}

	// Tag validation applies to every regional type. Global services
	// (IAM, CloudFront) carry no billing tags worth enforcing.
	if !r.Type.IsGlobal() {
		findings = append(findings, checkTags(r)...)
	}
	if r.Type == types.TypeEC2 {
		findings = append(findings, checkSecurityGroups(r)...)
	}
	if r.Type == types.TypeRDS {
		findings = append(findings, checkEncryption(r)...)
	}
	return findings
}

// HasRules reports whether a resource type has a catalog entry.
func HasRules(t types.ResourceType) bool {
	_, ok := catalog[t]
	return ok
}
