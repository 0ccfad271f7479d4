// Package scoring computes risk and compliance scores for a scan.
// All functions are pure: they take resources and violations and
// return derived reports without touching storage.
package scoring

import (
	"math"
	"sort"

	"github.com/finlens/finlens/types"
)

var severityWeights = map[types.Severity]int{
	types.SeverityCritical: 30,
	types.SeverityHigh:     15,
	types.SeverityMedium:   8,
	types.SeverityLow:      3,
}

// ResourceRisk scores a single resource from its violations plus
// intrinsic risk factors. Capped at 100.
func ResourceRisk(r types.Resource, violations []types.Violation) int {
	score := 0
	for _, v := range violations {
		score += severityWeights[v.Severity]
	}

	if enc, ok := r.RawBool("encrypted"); ok && !enc {
		score += 20
	} else if enc, ok := r.RawBool("storage_encrypted"); ok && !enc {
		score += 20
	} else if enc, ok := r.RawBool("encryption_enabled"); ok && !enc {
		score += 20
	}

	if len(r.MissingMandatoryTags()) >= 2 {
		score += 5
	}

	if r.Type == types.TypeEC2 && r.RawString("public_ip") != "" {
		score += 10
	}
	if r.Type == types.TypeS3 {
		if blocked, ok := r.RawBool("public_access_blocked"); ok && !blocked {
			score += 25
		}
	}

	if ageDays := r.RawInt("age_days"); ageDays > 365 {
		score += 5
	} else if launch := r.RawInt("launch_days_ago"); launch > 365 {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// RiskLevelFor maps a 0..100 score to its band.
func RiskLevelFor(score int) types.RiskLevel {
	switch {
	case score >= 70:
		return types.RiskCritical
	case score >= 50:
		return types.RiskHigh
	case score >= 30:
		return types.RiskMedium
	case score >= 10:
		return types.RiskLow
	default:
		return types.RiskSafe
	}
}

// ScanRisk aggregates per-resource scores into the scan-level report.
// The overall score leans on the mean but lets the single worst
// resource pull it up, so one critical host is never averaged away.
func ScanRisk(resources []types.Resource, violationsByResource map[string][]types.Violation) types.RiskReport {
	report := types.RiskReport{Level: types.RiskSafe}
	if len(resources) == 0 {
		return report
	}

	sum, max := 0, 0
	for _, r := range resources {
		score := ResourceRisk(r, violationsByResource[r.ID])
		level := RiskLevelFor(score)
		report.Resources = append(report.Resources, types.ResourceRisk{
			ResourceID:   r.ID,
			ResourceType: r.Type,
			Region:       r.Region,
			Score:        score,
			Level:        level,
		})
		sum += score
		if score > max {
			max = score
		}
		if level == types.RiskCritical || level == types.RiskHigh {
			report.HighRiskCount++
		}
	}

	mean := float64(sum) / float64(len(resources))
	overall := int(math.Floor(0.7*mean + 0.3*float64(max)))
	if overall > 100 {
		overall = 100
	}
	report.OverallScore = overall
	report.Level = RiskLevelFor(overall)

	sort.Slice(report.Resources, func(i, j int) bool {
		if report.Resources[i].Score != report.Resources[j].Score {
			return report.Resources[i].Score > report.Resources[j].Score
		}
		return report.Resources[i].ResourceID < report.Resources[j].ResourceID
	})
	return report
}
