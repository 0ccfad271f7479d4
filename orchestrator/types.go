package orchestrator

import (
	"time"

	"github.com/finlens/finlens/types"
)

// task is one unit of discovery work: one resource type in one region.
type task struct {
	Region string
	Type   types.ResourceType
}

// TaskFailure records a discovery task that errored. The scan continues
// without its resources.
type TaskFailure struct {
	Region string `json:"region"`
	Type   string `json:"resource_type"`
	Error  string `json:"error"`
}

// Stage status values.
const (
	StageCompleted = "completed"
	StageFailed    = "failed"
)

// StageResult records the outcome of one post-discovery enrichment
// stage. A failed stage degrades to empty output instead of failing the
// scan, so the record here is the only trace of what went wrong.
type StageResult struct {
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ScanResult is everything one orchestrator run produced.
type ScanResult struct {
	Session         *types.ScanSession     `json:"session"`
	Resources       []types.Resource       `json:"resources"`
	Violations      []types.Violation      `json:"violations"`
	Recommendations []types.Recommendation `json:"recommendations"`
	Costs           []types.CostRecord     `json:"costs"`
	Compliance      types.ComplianceReport `json:"compliance"`
	Risk            types.RiskReport       `json:"risk"`
	Stages          []StageResult          `json:"stages"`
	TaskFailures    []TaskFailure          `json:"task_failures,omitempty"`
	Duration        time.Duration          `json:"duration"`
}
