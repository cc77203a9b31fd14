package orchestration

import (
	"strings"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// evaluateCondition resolves a step's conditional gate against the plan's
// current step state. The bool result
// reports whether the gate passes; when it does not, the caller transitions
// the step to skipped without dispatching and without recording a cost
// entry.
func evaluateCondition(step *contracts.Step, index map[contracts.StepID]*contracts.Step) bool {
	cond := step.Condition
	if cond == nil {
		return true
	}

	target, ok := index[cond.TargetStepID]
	if !ok || target.Result == nil {
		return false
	}

	switch cond.Operator {
	case contracts.IfSuccess:
		return target.Status == contracts.StepCompleted
	case contracts.IfFailure:
		return target.Status == contracts.StepFailed
	case contracts.IfContains:
		return strings.Contains(target.Result.Output, cond.Value)
	default:
		return false
	}
}
