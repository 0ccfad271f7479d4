package scoring

import (
	"math"
	"sort"

	"github.com/finlens/finlens/rules"
	"github.com/finlens/finlens/types"
)

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Compliance scores a scan's violations against all six frameworks.
// A framework fails a rule when that rule appears at least once among
// the violations, no matter how many resources violate it.
func Compliance(violations []types.Violation) types.ComplianceReport {
	rulesByFramework := rules.CatalogRulesByFramework()

	failed := make(map[string]map[string]bool, len(rules.AllFrameworks))
	criticalFails := make(map[string]int, len(rules.AllFrameworks))
	for _, fw := range rules.AllFrameworks {
		failed[fw] = map[string]bool{}
	}

	seenRules := map[string]bool{}
	criticalTotal := 0
	for _, v := range violations {
		if v.Severity == types.SeverityCritical {
			criticalTotal++
		}
		seenRules[v.RuleID] = true
		for _, fw := range rules.FrameworksFor(v.RuleID) {
			if _, ok := failed[fw]; !ok {
				continue
			}
			failed[fw][v.RuleID] = true
			if v.Severity == types.SeverityCritical {
				criticalFails[fw]++
			}
		}
	}

	report := types.ComplianceReport{
		Frameworks:         make(map[string]types.FrameworkScore, len(rules.AllFrameworks)),
		TotalViolations:    len(violations),
		CriticalViolations: criticalTotal,
		UniqueFailingRules: len(seenRules),
	}

	var scoreSum float64
	for _, fw := range rules.AllFrameworks {
		total := len(rulesByFramework[fw])
		fails := len(failed[fw])
		passes := total - fails

		score := 100.0
		if total > 0 {
			score = round1(float64(passes) / float64(total) * 100)
		}
		scoreSum += score

		failedRules := make([]string, 0, fails)
		for rule := range failed[fw] {
			failedRules = append(failedRules, rule)
		}
		sort.Strings(failedRules)

		report.Frameworks[fw] = types.FrameworkScore{
			Pass:          passes,
			Fail:          fails,
			Total:         total,
			Score:         score,
			CriticalFails: criticalFails[fw],
			FailedRules:   failedRules,
		}
	}

	report.OverallScore = round1(scoreSum / float64(len(rules.AllFrameworks)))
	return report
}
