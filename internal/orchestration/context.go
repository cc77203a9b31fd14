package orchestration

import (
	"strings"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// buildStepContext assembles the serialized context handed to the dispatcher
// for a step, collecting the outputs of its already-completed dependencies
// in deterministic order. Plan steps are mutated in place, so this walks the
// dependency set directly rather than routing outputs through a separate
// inputs map.
func buildStepContext(step *contracts.Step, index map[contracts.StepID]*contracts.Step) string {
	if len(step.Dependencies) == 0 {
		return ""
	}

	ids := make([]contracts.StepID, 0, len(step.Dependencies))
	for dep := range step.Dependencies {
		ids = append(ids, dep)
	}
	// Deterministic ordering, matching the rest of the package's
	// sort-by-StepID convention.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}

	var b strings.Builder
	for _, id := range ids {
		dep, ok := index[id]
		if !ok || dep.Result == nil || dep.Status != contracts.StepCompleted {
			continue
		}
		b.WriteString("[")
		b.WriteString(string(dep.ID))
		b.WriteString("] ")
		b.WriteString(dep.Result.Output)
		b.WriteString("\n")
	}
	return b.String()
}
