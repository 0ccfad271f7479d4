// Package export renders scan artifacts into downloadable formats:
// CSV extracts, a complete JSON bundle, and a self-contained HTML
// report. All renderers are pure functions over persisted artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/finlens/finlens/types"
)

var violationColumns = []string{
	"rule_id", "severity", "resource_type", "resource_id",
	"region", "message", "remediation",
}

// ViolationsCSV renders violations as a CSV document.
func ViolationsCSV(violations []types.Violation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(violationColumns); err != nil {
		return nil, err
	}
	for _, v := range violations {
		record := []string{
			v.RuleID, string(v.Severity), string(v.ResourceType),
			v.ResourceID, v.Region, v.Message, v.Remediation,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var recommendationColumns = []string{
	"category", "rule_id", "resource_type", "resource_id", "region",
	"title", "description", "action",
	"estimated_monthly_savings", "confidence", "severity",
}

// RecommendationsCSV renders recommendations as a CSV document.
func RecommendationsCSV(recs []types.Recommendation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true

	if err := w.Write(recommendationColumns); err != nil {
		return nil, err
	}
	for _, r := range recs {
		record := []string{
			r.Category, r.RuleID, string(r.ResourceType), r.ResourceID, r.Region,
			r.Title, r.Description, r.Action,
			fmt.Sprintf("%.2f", r.EstimatedMonthlySavings), r.Confidence, string(r.Severity),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
