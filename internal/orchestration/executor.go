// Package orchestration batches a Plan's steps by dependency depth, runs
// each batch concurrently, evaluates conditional gates, and surfaces
// progress.
package orchestration

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/audit"
)

// Executor implements contracts.Executor with a batched execution loop:
// parallel dispatch within a batch, sequential deterministic merge, then a
// failure-policy decision before the next batch starts (ready -> execute
// -> merge -> failure/budget check -> progress), distinguishing critical steps (no
// Condition) from conditional ones that may be skipped without halting
// the plan.
type Executor struct {
	Dispatcher contracts.Dispatcher
	PoolSize   int
}

// NewExecutor constructs an Executor with the given dispatcher and
// concurrency bound (0 uses defaultPoolSize).
func NewExecutor(dispatcher contracts.Dispatcher, poolSize int) *Executor {
	return &Executor{Dispatcher: dispatcher, PoolSize: poolSize}
}

type stepResult struct {
	step       *contracts.Step
	skipped    bool
	err        error
	result     contracts.DispatchResult
	startedAt  time.Time
	finishedAt time.Time
}

// Execute implements contracts.Executor.
func (e *Executor) Execute(ctx context.Context, plan *contracts.Plan, onProgress func(contracts.ProgressEvent)) error {
	if plan == nil {
		return contracts.ErrInvalidInput
	}

	pool, err := newStepPool(e.PoolSize)
	if err != nil {
		return fmt.Errorf("orchestration: building step pool: %w", err)
	}
	defer pool.Release()

	plan.Status = contracts.PlanRunning
	audit.Log("event=plan_started plan_id=%s total_steps=%d batches=%d",
		plan.ID, plan.Metadata.TotalSteps, plan.Metadata.ParallelBatches)

	var spentUSD float64
	batchNum := 0

	for {
		select {
		case <-ctx.Done():
			plan.Status = contracts.PlanCancelled
			audit.Log("event=plan_cancelled plan_id=%s reason=context_cancelled", plan.ID)
			e.emitProgress(plan, onProgress)
			return nil
		default:
		}

		index := byID(plan)
		processed := make(map[contracts.StepID]struct{}, len(plan.Steps))
		for _, s := range plan.Steps {
			if isTerminal(s.Status) {
				processed[s.ID] = struct{}{}
			}
		}

		ready := nextBatch(plan, processed)
		if len(ready) == 0 {
			if allTerminal(plan) {
				e.finalizeStatus(plan)
				audit.Log("event=plan_finished plan_id=%s status=%s", plan.ID, plan.Status.String())
				e.emitProgress(plan, onProgress)
				return nil
			}
			// Every remaining step is blocked on a dependency that will
			// never complete (its own dependency failed without being
			// conditional elsewhere in the chain); nothing more can run.
			plan.Status = contracts.PlanFailed
			e.emitProgress(plan, onProgress)
			return nil
		}

		batchNum++
		audit.Log("event=batch_started plan_id=%s batch=%d step_count=%d", plan.ID, batchNum, len(ready))
		batchStart := time.Now()

		results := make([]stepResult, len(ready))
		pool.runAll(len(ready), func(i int) {
			results[i] = e.runStep(ctx, ready[i], index)
		})

		sort.Slice(results, func(i, j int) bool {
			return string(results[i].step.ID) < string(results[j].step.ID)
		})

		for _, r := range results {
			e.applyResult(r, &spentUSD)
		}

		audit.Log("event=batch_completed plan_id=%s batch=%d duration_ms=%d",
			plan.ID, batchNum, time.Since(batchStart).Milliseconds())

		if hasCriticalFailure(plan) {
			plan.Status = contracts.PlanFailed
			audit.Log("event=plan_failed plan_id=%s batch=%d reason=critical_step_failure", plan.ID, batchNum)
			e.emitProgress(plan, onProgress)
			return nil
		}

		if plan.Metadata.BudgetLimitUSD > 0 && spentUSD > plan.Metadata.BudgetLimitUSD {
			plan.Status = contracts.PlanFailed
			audit.Log("event=plan_failed plan_id=%s reason=budget_exceeded spent=%.6f limit=%.6f",
				plan.ID, spentUSD, plan.Metadata.BudgetLimitUSD)
			e.emitProgress(plan, onProgress)
			return nil
		}

		e.emitProgress(plan, onProgress)
	}
}

// runStep evaluates the conditional gate (if any) and, if it passes,
// dispatches the step. It only marks the step running; applyResult records
// the outcome sequentially after the batch joins.
func (e *Executor) runStep(ctx context.Context, step *contracts.Step, index map[contracts.StepID]*contracts.Step) stepResult {
	if !evaluateCondition(step, index) {
		return stepResult{step: step, skipped: true}
	}

	step.Status = contracts.StepRunning
	start := time.Now()
	audit.Log("event=step_started step_id=%s agent_id=%s", step.ID, step.AgentID)

	depContext := buildStepContext(step, index)
	task := step.Task
	if depContext != "" {
		task = task + "\n\nContext:\n" + depContext
	}

	res, err := e.Dispatcher.Dispatch(ctx, step.AgentID, task, contracts.DispatchConstraints{})
	return stepResult{
		step:       step,
		result:     res,
		err:        err,
		startedAt:  start,
		finishedAt: time.Now(),
	}
}

// applyResult mutates the plan sequentially (results are merged one at a
// time, in sorted StepID order) so the outcome never depends on goroutine
// scheduling.
func (e *Executor) applyResult(r stepResult, spentUSD *float64) {
	if r.skipped {
		r.step.Status = contracts.StepSkipped
		audit.Log("event=step_skipped step_id=%s", r.step.ID)
		return
	}

	duration := contracts.TimeoutMs(r.finishedAt.Sub(r.startedAt).Milliseconds())
	if r.err != nil {
		r.step.Status = contracts.StepFailed
		r.step.Result = &contracts.StepResult{
			Error:       r.err.Error(),
			Duration:    duration,
			StartedAt:   contracts.Timestamp(r.startedAt.UnixMilli()),
			CompletedAt: contracts.Timestamp(r.finishedAt.UnixMilli()),
		}
		audit.Log("event=step_failed step_id=%s error=%s", r.step.ID, r.err.Error())
		return
	}

	r.step.Status = contracts.StepCompleted
	r.step.Result = &contracts.StepResult{
		Output:      r.result.Output,
		Duration:    duration,
		StartedAt:   contracts.Timestamp(r.startedAt.UnixMilli()),
		CompletedAt: contracts.Timestamp(r.finishedAt.UnixMilli()),
		ModelUsed:   r.result.ModelUsed,
		Provider:    r.result.Provider,
		Tokens:      r.result.Tokens,
	}
	*spentUSD += r.result.CostUSD
	audit.Log("event=step_completed step_id=%s model=%s tokens=%d cost=%.6f",
		r.step.ID, r.result.ModelUsed, r.result.Tokens.Total, r.result.CostUSD)
}

// finalizeStatus sets the plan's terminal status once every step has reached
// a terminal state.
func (e *Executor) finalizeStatus(plan *contracts.Plan) {
	if hasCriticalFailure(plan) {
		plan.Status = contracts.PlanFailed
		return
	}
	plan.Status = contracts.PlanCompleted
}

func (e *Executor) emitProgress(plan *contracts.Plan, onProgress func(contracts.ProgressEvent)) {
	if onProgress == nil {
		return
	}
	var completed, failed, skipped, currentStep int
	for i, s := range plan.Steps {
		switch s.Status {
		case contracts.StepCompleted:
			completed++
		case contracts.StepFailed:
			failed++
		case contracts.StepSkipped:
			skipped++
		case contracts.StepRunning:
			if currentStep == 0 {
				currentStep = i + 1
			}
		}
	}
	onProgress(contracts.ProgressEvent{
		PlanID:         plan.ID,
		CurrentStep:    currentStep,
		TotalSteps:     plan.Metadata.TotalSteps,
		CompletedCount: completed,
		FailedCount:    failed,
		SkippedCount:   skipped,
		Status:         plan.Status,
	})
}
