package types

// RiskLevel bands an overall risk score for display.
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
	RiskSafe     RiskLevel = "SAFE"
)

// ResourceRisk is one resource's risk score within a scan.
type ResourceRisk struct {
	ResourceID   string       `json:"resource_id"`
	ResourceType ResourceType `json:"resource_type"`
	Region       string       `json:"region"`
	Score        int          `json:"risk_score"`
	Level        RiskLevel    `json:"risk_level"`
}

// RiskReport is the derived risk snapshot for one scan. It is a pure
// function of the scan's resources and violations: recomputing it any
// number of times yields identical output.
type RiskReport struct {
	OverallScore  int            `json:"overall_risk_score"`
	Level         RiskLevel      `json:"risk_level"`
	Resources     []ResourceRisk `json:"resource_scores"`
	HighRiskCount int            `json:"high_risk_count"`
}

// FrameworkScore is one compliance framework's pass/fail tally for a
// scan. Scoring is per distinct rule, not per violating resource.
type FrameworkScore struct {
	Pass          int      `json:"pass"`
	Fail          int      `json:"fail"`
	Total         int      `json:"total"`
	Score         float64  `json:"score"`
	CriticalFails int      `json:"critical_fails"`
	FailedRules   []string `json:"failed_rules"`
}

// ComplianceReport is the derived compliance snapshot for one scan.
type ComplianceReport struct {
	Frameworks         map[string]FrameworkScore `json:"frameworks"`
	OverallScore       float64                   `json:"overall_score"`
	TotalViolations    int                       `json:"total_violations"`
	CriticalViolations int                       `json:"critical_violations"`
	UniqueFailingRules int                       `json:"unique_failing_rules"`
}
