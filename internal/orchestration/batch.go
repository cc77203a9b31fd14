package orchestration

import (
	"sort"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// nextBatch selects every pending step whose dependencies are all present in
// processed, sorted by StepID for deterministic ordering. Grounded on the
// scheduler's Pending-counter NextReady, reframed over a plain dependency set
// instead of a counter since Step.Dependencies is the set itself.
func nextBatch(plan *contracts.Plan, processed map[contracts.StepID]struct{}) []*contracts.Step {
	var ready []*contracts.Step
	for _, step := range plan.Steps {
		if step.Status != contracts.StepPending {
			continue
		}
		if depsSatisfied(step, processed) {
			ready = append(ready, step)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		return string(ready[i].ID) < string(ready[j].ID)
	})
	return ready
}

func depsSatisfied(step *contracts.Step, processed map[contracts.StepID]struct{}) bool {
	for dep := range step.Dependencies {
		if _, ok := processed[dep]; !ok {
			return false
		}
	}
	return true
}

// allTerminal reports whether every step in the plan has reached a terminal
// status (completed, failed, or skipped).
func allTerminal(plan *contracts.Plan) bool {
	for _, s := range plan.Steps {
		if !isTerminal(s.Status) {
			return false
		}
	}
	return true
}

func isTerminal(status contracts.StepStatus) bool {
	return status == contracts.StepCompleted || status == contracts.StepFailed || status == contracts.StepSkipped
}

// hasCriticalFailure reports whether any step with no condition has failed.
func hasCriticalFailure(plan *contracts.Plan) bool {
	for _, s := range plan.Steps {
		if s.Status == contracts.StepFailed && s.Condition == nil {
			return true
		}
	}
	return false
}

func byID(plan *contracts.Plan) map[contracts.StepID]*contracts.Step {
	m := make(map[contracts.StepID]*contracts.Step, len(plan.Steps))
	for _, s := range plan.Steps {
		m[s.ID] = s
	}
	return m
}
