package recommend

import (
	"sort"

	"github.com/finlens/finlens/types"
)

// Generate converts a scan's violations into ranked recommendations.
// Violations without a metadata entry are dropped rather than padded
// with fabricated advice. At most one recommendation is emitted per
// (resource, rule) pair.
func Generate(scanID string, violations []types.Violation, resources []types.Resource) []types.Recommendation {
	byID := make(map[string]types.Resource, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
	}

	seen := map[string]bool{}
	recs := make([]types.Recommendation, 0, len(violations))
	for _, v := range violations {
		meta, ok := ruleMetaTable[v.RuleID]
		if !ok {
			continue
		}
		if key := v.Key(); seen[key] {
			continue
		} else {
			seen[key] = true
		}

		resource := byID[v.ResourceID]
		recs = append(recs, types.Recommendation{
			ID:                      types.NewID(),
			ScanID:                  scanID,
			Category:                meta.Category,
			RuleID:                  v.RuleID,
			ResourceID:              v.ResourceID,
			ResourceType:            v.ResourceType,
			Region:                  v.Region,
			Title:                   meta.Title,
			Description:             meta.Description,
			Action:                  meta.Action,
			EstimatedMonthlySavings: estimatedSavings(v.RuleID, resource),
			Confidence:              meta.Confidence,
			Severity:                v.Severity,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].EstimatedMonthlySavings != recs[j].EstimatedMonthlySavings {
			return recs[i].EstimatedMonthlySavings > recs[j].EstimatedMonthlySavings
		}
		return recs[i].Severity.Rank() < recs[j].Severity.Rank()
	})
	return recs
}

// TotalSavings sums the estimated monthly savings of a recommendation
// set. This is the scan's total_monthly_waste figure.
func TotalSavings(recs []types.Recommendation) float64 {
	var total float64
	for _, r := range recs {
		total += r.EstimatedMonthlySavings
	}
	return round2(total)
}
