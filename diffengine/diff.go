// Package diffengine compares the resource and violation sets of two
// completed scans. The comparison is pure: it reads two snapshots and
// returns what appeared, disappeared, or changed state between them.
package diffengine

import (
	"math"
	"sort"
	"time"

	"github.com/finlens/finlens/types"
)

// maxDiffItems bounds each detail list in the result. Summary counts
// are always computed from the untruncated sets.
const maxDiffItems = 100

// ScanSummary identifies one side of a comparison.
type ScanSummary struct {
	ID             string   `json:"id"`
	StartedAt      string   `json:"started_at"`
	ResourceCount  int      `json:"resource_count"`
	ViolationCount int      `json:"violation_count"`
	Regions        []string `json:"regions"`
}

// StateChange records a resource present in both scans whose state
// field differs.
type StateChange struct {
	ResourceID   string             `json:"resource_id"`
	ResourceType types.ResourceType `json:"resource_type"`
	Name         string             `json:"name"`
	Region       string             `json:"region"`
	OldState     string             `json:"old_state"`
	NewState     string             `json:"new_state"`
}

// TypeChange tallies added and removed resources for one type.
type TypeChange struct {
	Type    types.ResourceType `json:"type"`
	Added   int                `json:"added"`
	Removed int                `json:"removed"`
}

// Summary holds the untruncated change counts.
type Summary struct {
	ResourcesAdded     int     `json:"resources_added"`
	ResourcesRemoved   int     `json:"resources_removed"`
	StateChanges       int     `json:"state_changes"`
	NewViolations      int     `json:"new_violations"`
	FixedViolations    int     `json:"fixed_violations"`
	WasteDelta         float64 `json:"waste_delta"`
	NetViolationChange int     `json:"net_violation_change"`
}

// Result is the full comparison of scan A (baseline) against scan B.
type Result struct {
	ScanA            ScanSummary       `json:"scan_a"`
	ScanB            ScanSummary       `json:"scan_b"`
	Summary          Summary           `json:"summary"`
	AddedResources   []types.Resource  `json:"added_resources"`
	RemovedResources []types.Resource  `json:"removed_resources"`
	StateChanges     []StateChange     `json:"state_changes"`
	NewViolations    []types.Violation `json:"new_violations"`
	FixedViolations  []types.Violation `json:"fixed_violations"`
	TypeChanges      []TypeChange      `json:"type_changes"`
}

// Input is one scan's data as loaded from storage.
type Input struct {
	Session         types.ScanSession
	Resources       []types.Resource
	Violations      []types.Violation
	Recommendations []types.Recommendation
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func summarize(in Input, resourceCount, violationCount int) ScanSummary {
	s := ScanSummary{
		ID:             in.Session.ID,
		ResourceCount:  resourceCount,
		ViolationCount: violationCount,
		Regions:        in.Session.Regions,
	}
	if !in.Session.StartedAt.IsZero() {
		s.StartedAt = in.Session.StartedAt.Format(time.RFC3339)
	}
	return s
}

// Compare diffs scan A (older, baseline) against scan B (newer).
// Resources are keyed by resource ID, violations by resource ID plus
// rule ID, so one resource fixing a rule while breaking another shows
// up on both sides.
func Compare(a, b Input) Result {
	resA := make(map[string]types.Resource, len(a.Resources))
	for _, r := range a.Resources {
		resA[r.ID] = r
	}
	resB := make(map[string]types.Resource, len(b.Resources))
	for _, r := range b.Resources {
		resB[r.ID] = r
	}

	vioA := make(map[string]types.Violation, len(a.Violations))
	for _, v := range a.Violations {
		vioA[v.Key()] = v
	}
	vioB := make(map[string]types.Violation, len(b.Violations))
	for _, v := range b.Violations {
		vioB[v.Key()] = v
	}

	var added, removed []types.Resource
	var changes []StateChange
	typeChanges := map[types.ResourceType]*TypeChange{}

	bump := func(t types.ResourceType) *TypeChange {
		if tc, ok := typeChanges[t]; ok {
			return tc
		}
		tc := &TypeChange{Type: t}
		typeChanges[t] = tc
		return tc
	}

	for id, r := range resB {
		old, existed := resA[id]
		if !existed {
			added = append(added, r)
			bump(r.Type).Added++
			continue
		}
		if old.State != r.State {
			changes = append(changes, StateChange{
				ResourceID:   id,
				ResourceType: r.Type,
				Name:         r.Name,
				Region:       r.Region,
				OldState:     old.State,
				NewState:     r.State,
			})
		}
	}
	for id, r := range resA {
		if _, stillThere := resB[id]; !stillThere {
			removed = append(removed, r)
			bump(r.Type).Removed++
		}
	}

	var newVio, fixedVio []types.Violation
	for key, v := range vioB {
		if _, existed := vioA[key]; !existed {
			newVio = append(newVio, v)
		}
	}
	for key, v := range vioA {
		if _, stillThere := vioB[key]; !stillThere {
			fixedVio = append(fixedVio, v)
		}
	}

	var wasteA, wasteB float64
	for _, r := range a.Recommendations {
		wasteA += r.EstimatedMonthlySavings
	}
	for _, r := range b.Recommendations {
		wasteB += r.EstimatedMonthlySavings
	}

	sortResources(added)
	sortResources(removed)
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].ResourceType != changes[j].ResourceType {
			return changes[i].ResourceType < changes[j].ResourceType
		}
		return changes[i].ResourceID < changes[j].ResourceID
	})
	sortViolations(newVio)
	sortViolations(fixedVio)

	tcList := make([]TypeChange, 0, len(typeChanges))
	for _, tc := range typeChanges {
		tcList = append(tcList, *tc)
	}
	sort.Slice(tcList, func(i, j int) bool { return tcList[i].Type < tcList[j].Type })

	return Result{
		ScanA: summarize(a, len(resA), len(vioA)),
		ScanB: summarize(b, len(resB), len(vioB)),
		Summary: Summary{
			ResourcesAdded:     len(added),
			ResourcesRemoved:   len(removed),
			StateChanges:       len(changes),
			NewViolations:      len(newVio),
			FixedViolations:    len(fixedVio),
			WasteDelta:         round2(wasteB - wasteA),
			NetViolationChange: len(newVio) - len(fixedVio),
		},
		AddedResources:   truncateResources(added),
		RemovedResources: truncateResources(removed),
		StateChanges:     truncateStateChanges(changes),
		NewViolations:    truncateViolations(newVio),
		FixedViolations:  truncateViolations(fixedVio),
		TypeChanges:      tcList,
	}
}

func sortResources(rs []types.Resource) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Type != rs[j].Type {
			return rs[i].Type < rs[j].Type
		}
		return rs[i].ID < rs[j].ID
	})
}

func sortViolations(vs []types.Violation) {
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Severity.Rank() != vs[j].Severity.Rank() {
			return vs[i].Severity.Rank() < vs[j].Severity.Rank()
		}
		return vs[i].Key() < vs[j].Key()
	})
}

func truncateResources(rs []types.Resource) []types.Resource {
	if len(rs) > maxDiffItems {
		return rs[:maxDiffItems]
	}
	return rs
}

func truncateStateChanges(cs []StateChange) []StateChange {
	if len(cs) > maxDiffItems {
		return cs[:maxDiffItems]
	}
	return cs
}

func truncateViolations(vs []types.Violation) []types.Violation {
	if len(vs) > maxDiffItems {
		return vs[:maxDiffItems]
	}
	return vs
}
