package orchestrator

import (
	"context"
	"sync"

	"github.com/finlens/finlens/rules"
	"github.com/finlens/finlens/scanlog"
	"github.com/finlens/finlens/telemetry"
	"github.com/finlens/finlens/types"
)

// buildTasks expands (regions × types) into the discovery task matrix.
// Global types are scheduled exactly once, against the first region that
// names them; unknown type strings are skipped.
func buildTasks(regions []string, resourceTypes []string) []task {
	var tasks []task
	scheduledGlobal := make(map[types.ResourceType]bool)

	for _, region := range regions {
		for _, raw := range resourceTypes {
			t, err := types.ParseResourceType(raw)
			if err != nil {
				continue
			}
			if t.IsGlobal() {
				if scheduledGlobal[t] {
					continue
				}
				scheduledGlobal[t] = true
			}
			tasks = append(tasks, task{Region: region, Type: t})
		}
	}
	return tasks
}

// runTasks executes the task matrix on a bounded worker pool. Failed
// tasks are isolated: their error is recorded and the scan proceeds with
// whatever the other tasks discovered.
func (o *Orchestrator) runTasks(ctx context.Context, scanID string, tasks []task) ([]types.Resource, []TaskFailure) {
	workers := min(len(tasks), o.workers)
	if workers == 0 {
		return nil, nil
	}

	taskCh := make(chan task)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var resources []types.Resource
	var failures []TaskFailure

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range taskCh {
				o.appendEvent(scanlog.EventTaskStarted, scanID, map[string]any{
					"region": t.Region,
					"type":   string(t.Type),
				})

				discovered, err := o.provider.Discover(ctx, t.Region, t.Type)
				if err != nil {
					o.logger.LogTaskFailed(ctx, scanID, t.Region, string(t.Type), err)
					o.appendEventError(scanlog.EventTaskFailed, scanID, map[string]any{
						"region": t.Region,
						"type":   string(t.Type),
					}, err)
					if telemetry.TasksFailed != nil {
						telemetry.TasksFailed.Add(ctx, 1)
					}
					mu.Lock()
					failures = append(failures, TaskFailure{
						Region: t.Region,
						Type:   string(t.Type),
						Error:  err.Error(),
					})
					mu.Unlock()
					continue
				}

				o.appendEvent(scanlog.EventTaskCompleted, scanID, map[string]any{
					"region":    t.Region,
					"type":      string(t.Type),
					"resources": len(discovered),
				})
				mu.Lock()
				resources = append(resources, discovered...)
				mu.Unlock()
			}
		}()
	}

	for _, t := range tasks {
		taskCh <- t
	}
	close(taskCh)
	wg.Wait()

	return resources, failures
}

// evaluate runs the rule catalog over every discovered resource and
// materializes findings into violations owned by the scan.
func (o *Orchestrator) evaluate(scanID string, resources []types.Resource) ([]types.Violation, map[string][]types.Violation) {
	var violations []types.Violation
	byResource := make(map[string][]types.Violation)

	for i := range resources {
		r := &resources[i]
		findings := rules.Evaluate(*r)
		r.ViolationCount = len(findings)

		for _, f := range findings {
			v := types.Violation{
				ID:           types.NewID(),
				ScanID:       scanID,
				ResourceID:   r.ID,
				ResourceType: r.Type,
				Region:       r.Region,
				RuleID:       f.RuleID,
				Severity:     f.Severity,
				Message:      f.Message,
				Remediation:  f.Remediation,
			}
			violations = append(violations, v)
			byResource[r.ID] = append(byResource[r.ID], v)
		}
	}
	return violations, byResource
}
