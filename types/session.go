package types

import (
	"fmt"
	"time"
)

// ScanStatus is the lifecycle state of a scan session.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// validTransitions encodes the session state machine:
// pending → running → {completed | failed}.
var validTransitions = map[ScanStatus][]ScanStatus{
	ScanPending: {ScanRunning, ScanFailed},
	ScanRunning: {ScanCompleted, ScanFailed},
}

// ScanSession is the unit of work and lifecycle record for one scan
// run. It owns every artifact produced during the run, all keyed by ID.
// Exactly one orchestrator run writes a session; a failed scan is
// re-triggered as a new session with a new ID, never retried in place.
type ScanSession struct {
	ID                string       `json:"id"`
	Status            ScanStatus   `json:"status"`
	Regions           []string     `json:"regions"`
	ResourceTypes     []string     `json:"resource_types"`
	StartedAt         time.Time    `json:"started_at"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
	ResourceCount     int          `json:"resource_count"`
	ViolationCount    int          `json:"violation_count"`
	TotalMonthlyWaste float64      `json:"total_monthly_waste"`
	OverallRiskScore  int          `json:"overall_risk_score"`
	RiskLevel         RiskLevel    `json:"risk_level,omitempty"`
	ComplianceScore   float64      `json:"compliance_score"`
	Error             string       `json:"error,omitempty"`
	TriggeredBy       string       `json:"triggered_by,omitempty"`
}

// NewScanSession creates a session in the pending state.
func NewScanSession(regions, resourceTypes []string, triggeredBy string) *ScanSession {
	return &ScanSession{
		ID:            NewID(),
		Status:        ScanPending,
		Regions:       regions,
		ResourceTypes: resourceTypes,
		StartedAt:     time.Now().UTC(),
		TriggeredBy:   triggeredBy,
	}
}

// Transition moves the session to a new status, rejecting moves the
// state machine does not allow.
func (s *ScanSession) Transition(to ScanStatus) error {
	for _, allowed := range validTransitions[s.Status] {
		if allowed == to {
			s.Status = to
			return nil
		}
	}
	return fmt.Errorf("invalid scan transition %s → %s", s.Status, to)
}

// Terminal reports whether the session has finished, successfully or not.
func (s *ScanSession) Terminal() bool {
	return s.Status == ScanCompleted || s.Status == ScanFailed
}
