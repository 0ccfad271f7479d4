package types

// Violation is a single rule failure against one resource. Violations
// are generated once during rule evaluation and never mutated.
type Violation struct {
	ID           string       `json:"id"`
	ScanID       string       `json:"scan_id"`
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	Region       string       `json:"region"`
	RuleID       string       `json:"rule_id"`
	Severity     Severity     `json:"severity"`
	Message      string       `json:"message"`
	Remediation  string       `json:"remediation"`
}

// Key returns the stable identity of a violation across scans, used by
// the diff engine.
func (v Violation) Key() string {
	return v.ResourceID + "|" + v.RuleID
}

// Recommendation is a dollar-estimated remediation action derived from
// exactly one violation.
type Recommendation struct {
	ID                      string       `json:"id"`
	ScanID                  string       `json:"scan_id"`
	Category                string       `json:"category"`
	RuleID                  string       `json:"rule_id"`
	ResourceID              string       `json:"resource_id"`
	ResourceType            ResourceType `json:"resource_type"`
	Region                  string       `json:"region"`
	Title                   string       `json:"title"`
	Description             string       `json:"description"`
	Action                  string       `json:"action"`
	EstimatedMonthlySavings float64      `json:"estimated_monthly_savings"`
	Confidence              string       `json:"confidence"`
	Severity                Severity     `json:"severity"`
}

// CostRecord is one line of account spend, grouped by service and
// region, as returned by the cost stage.
type CostRecord struct {
	Service     string  `json:"service"`
	Region      string  `json:"region"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
}
