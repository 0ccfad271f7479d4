package export

import (
	"encoding/json"
	"math"
	"time"

	"github.com/finlens/finlens/types"
)

// Bundle is the complete exportable snapshot of one scan.
type Bundle struct {
	ExportedAt string                 `json:"exported_at"`
	Scan       *types.ScanSession     `json:"scan"`
	Summary    BundleSummary          `json:"summary"`
	Costs      []types.CostRecord     `json:"cost_records"`
	Violations []types.Violation      `json:"violations"`
	Recs       []types.Recommendation `json:"recommendations"`
}

type BundleSummary struct {
	TotalResources       int     `json:"total_resources"`
	TotalViolations      int     `json:"total_violations"`
	TotalRecommendations int     `json:"total_recommendations"`
	TotalMonthlySavings  float64 `json:"total_estimated_monthly_savings"`
}

// JSONBundle renders the full scan bundle as indented JSON.
func JSONBundle(session *types.ScanSession, resources []types.Resource,
	violations []types.Violation, costRecords []types.CostRecord,
	recs []types.Recommendation) ([]byte, error) {

	var savings float64
	for _, r := range recs {
		savings += r.EstimatedMonthlySavings
	}

	bundle := Bundle{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Scan:       session,
		Summary: BundleSummary{
			TotalResources:       len(resources),
			TotalViolations:      len(violations),
			TotalRecommendations: len(recs),
			TotalMonthlySavings:  math.Round(savings*100) / 100,
		},
		Costs:      costRecords,
		Violations: violations,
		Recs:       recs,
	}
	return json.MarshalIndent(bundle, "", "  ")
}
