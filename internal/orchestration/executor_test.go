package orchestration_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/orchestration"
)

// stubDispatcher returns a canned result or error keyed by task text, so
// tests can drive specific success/failure/content scenarios deterministically.
type stubDispatcher struct {
	outputs map[string]string
	fail    map[string]bool
}

func (d *stubDispatcher) Dispatch(_ context.Context, _ contracts.AgentID, task string, _ contracts.DispatchConstraints) (contracts.DispatchResult, error) {
	if d.fail[task] {
		return contracts.DispatchResult{}, fmt.Errorf("%w: simulated failure", contracts.ErrProviderError)
	}
	out := d.outputs[task]
	if out == "" {
		out = "ok"
	}
	return contracts.DispatchResult{Output: out, Tokens: contracts.Tokens{Total: 10}}, nil
}

func planWithSteps(steps ...*contracts.Step) *contracts.Plan {
	return &contracts.Plan{
		ID:     "p1",
		Status: contracts.PlanPending,
		Steps:  steps,
		Metadata: contracts.PlanMetadata{
			TotalSteps: len(steps),
		},
	}
}

func TestExecute_AllSucceed(t *testing.T) {
	s1 := &contracts.Step{ID: "s1", AgentID: "a", Task: "build"}
	s2 := &contracts.Step{ID: "s2", AgentID: "a", Task: "test", Dependencies: map[contracts.StepID]struct{}{"s1": {}}}
	plan := planWithSteps(s1, s2)

	exec := orchestration.NewExecutor(&stubDispatcher{outputs: map[string]string{}}, 4)
	err := exec.Execute(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.PlanCompleted, plan.Status)
	assert.Equal(t, contracts.StepCompleted, s1.Status)
	assert.Equal(t, contracts.StepCompleted, s2.Status)
}

func TestExecute_CriticalFailureHaltsPlan(t *testing.T) {
	s1 := &contracts.Step{ID: "s1", AgentID: "a", Task: "build"}
	s2 := &contracts.Step{ID: "s2", AgentID: "a", Task: "test", Dependencies: map[contracts.StepID]struct{}{"s1": {}}}
	s3 := &contracts.Step{ID: "s3", AgentID: "a", Task: "deploy", Dependencies: map[contracts.StepID]struct{}{"s2": {}}}
	plan := planWithSteps(s1, s2, s3)

	exec := orchestration.NewExecutor(&stubDispatcher{fail: map[string]bool{"test": true}}, 4)
	err := exec.Execute(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.PlanFailed, plan.Status)
	assert.Equal(t, contracts.StepCompleted, s1.Status)
	assert.Equal(t, contracts.StepFailed, s2.Status)
	assert.Equal(t, contracts.StepPending, s3.Status) // never started
}

func TestExecute_ConditionalSkipOnFailedTarget(t *testing.T) {
	s0 := &contracts.Step{ID: "s0", AgentID: "a", Task: "prepare"}
	s1 := &contracts.Step{ID: "s1", AgentID: "a", Task: "build",
		Dependencies: map[contracts.StepID]struct{}{"s0": {}},
		Condition:    &contracts.Condition{TargetStepID: "s0", Operator: contracts.IfSuccess},
	}
	s2 := &contracts.Step{ID: "s2", AgentID: "a", Task: "deploy",
		Dependencies: map[contracts.StepID]struct{}{"s1": {}},
		Condition:    &contracts.Condition{TargetStepID: "s1", Operator: contracts.IfSuccess},
	}
	plan := planWithSteps(s0, s1, s2)

	exec := orchestration.NewExecutor(&stubDispatcher{fail: map[string]bool{"build": true}}, 4)
	err := exec.Execute(context.Background(), plan, nil)
	require.NoError(t, err)
	// s1 carries a condition, so its failure is not critical; s2's gate on s1
	// fails -> skipped, not counted as failure, and plan completes (no
	// critical failure).
	assert.Equal(t, contracts.StepFailed, s1.Status)
	assert.Equal(t, contracts.StepSkipped, s2.Status)
}

func TestExecute_IfContainsGate(t *testing.T) {
	s1 := &contracts.Step{ID: "s1", AgentID: "a", Task: "analyze"}
	s2 := &contracts.Step{ID: "s2", AgentID: "a", Task: "alert",
		Dependencies: map[contracts.StepID]struct{}{"s1": {}},
		Condition:    &contracts.Condition{TargetStepID: "s1", Operator: contracts.IfContains, Value: "ERROR"},
	}
	plan := planWithSteps(s1, s2)

	exec := orchestration.NewExecutor(&stubDispatcher{outputs: map[string]string{"analyze": "ERROR 500"}}, 4)
	err := exec.Execute(context.Background(), plan, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.StepCompleted, s2.Status)
}

func TestExecute_CancellationStopsBeforeNextBatch(t *testing.T) {
	s1 := &contracts.Step{ID: "s1", AgentID: "a", Task: "build"}
	plan := planWithSteps(s1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := orchestration.NewExecutor(&stubDispatcher{}, 4)
	err := exec.Execute(ctx, plan, nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.PlanCancelled, plan.Status)
	assert.Equal(t, contracts.StepPending, s1.Status)
}
