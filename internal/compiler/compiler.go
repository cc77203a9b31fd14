// Package compiler tokenizes and parses the workflow DSL into a validated
// Plan: THEN-separated phases, AND-separated parallel task tokens within a
// phase, optional "agentId:" prefixes, and optional trailing conditional
// suffixes.
package compiler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// Compiler implements contracts.Compiler.
type Compiler struct {
	// DefaultAgentID seeds the inherited agent when the caller's source
	// carries no explicit prefix on its first task token.
	DefaultAgentID contracts.AgentID
}

// New constructs a Compiler with the given fallback default agent.
func New(defaultAgentID contracts.AgentID) *Compiler {
	return &Compiler{DefaultAgentID: defaultAgentID}
}

// Compile implements contracts.Compiler.
func (c *Compiler) Compile(_ context.Context, source string) (*contracts.Plan, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty input", contracts.ErrInvalidSyntax)
	}
	if hasLeadingOperator(trimmed) {
		return nil, fmt.Errorf("%w: text begins with an operator", contracts.ErrInvalidSyntax)
	}
	if hasAdjacentOperators(trimmed) {
		return nil, fmt.Errorf("%w: adjacent operators", contracts.ErrInvalidSyntax)
	}

	phases := splitPhases(trimmed)
	if len(phases) == 0 {
		return nil, fmt.Errorf("%w: no phases parsed", contracts.ErrInvalidSyntax)
	}

	plan := &contracts.Plan{
		ID:          contracts.PlanID(uuid.NewString()),
		Description: trimmed,
		CreatedAt:   contracts.Timestamp(time.Now().UnixMilli()),
		Status:      contracts.PlanPending,
	}

	inheritedAgent := c.DefaultAgentID
	var prevPhaseStepIDs []contracts.StepID

	for _, phase := range phases {
		rawTokens := splitTaskTokens(phase)
		if len(rawTokens) == 0 {
			return nil, fmt.Errorf("%w: empty phase", contracts.ErrInvalidSyntax)
		}

		deps := make(map[contracts.StepID]struct{}, len(prevPhaseStepIDs))
		for _, id := range prevPhaseStepIDs {
			deps[id] = struct{}{}
		}

		var currentPhaseStepIDs []contracts.StepID
		for _, raw := range rawTokens {
			parsed := parseTaskToken(raw)
			if parsed.hasAgent {
				inheritedAgent = parsed.agentID
			}
			if parsed.task == "" {
				return nil, fmt.Errorf("%w: empty task text", contracts.ErrInvalidSyntax)
			}

			step := &contracts.Step{
				ID:           contracts.StepID(uuid.NewString()),
				AgentID:      inheritedAgent,
				Task:         parsed.task,
				Dependencies: cloneDeps(deps),
				Status:       contracts.StepPending,
			}
			if parsed.condition != nil {
				cond := *parsed.condition
				if len(prevPhaseStepIDs) > 0 {
					cond.TargetStepID = prevPhaseStepIDs[len(prevPhaseStepIDs)-1]
				}
				step.Condition = &cond
			}

			plan.Steps = append(plan.Steps, step)
			currentPhaseStepIDs = append(currentPhaseStepIDs, step.ID)
		}

		prevPhaseStepIDs = currentPhaseStepIDs
	}

	depths := computeDepths(plan.Steps)
	maxDepth := 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}
	batches := maxDepth + 1

	plan.Metadata = contracts.PlanMetadata{
		TotalSteps:        len(plan.Steps),
		ParallelBatches:   batches,
		EstimatedDuration: contracts.TimeoutMs(batches) * 2000,
		OriginalText:      trimmed,
	}

	return plan, nil
}

func cloneDeps(src map[contracts.StepID]struct{}) map[contracts.StepID]struct{} {
	dst := make(map[contracts.StepID]struct{}, len(src))
	for k := range src {
		dst[k] = struct{}{}
	}
	return dst
}

// computeDepths returns, for each step in steps, depth(step) = 0 if its
// dependency set is empty, else 1 + max(depth(dep)) over its dependencies.
// Safe without cycle detection: compilation only ever produces a strict
// total order of phases, so no cycle can exist by construction.
func computeDepths(steps []*contracts.Step) map[contracts.StepID]int {
	byID := make(map[contracts.StepID]*contracts.Step, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}
	depths := make(map[contracts.StepID]int, len(steps))
	var resolve func(id contracts.StepID) int
	resolve = func(id contracts.StepID) int {
		if d, ok := depths[id]; ok {
			return d
		}
		s := byID[id]
		if s == nil || len(s.Dependencies) == 0 {
			depths[id] = 0
			return 0
		}
		max := 0
		for dep := range s.Dependencies {
			if d := resolve(dep); d > max {
				max = d
			}
		}
		depths[id] = max + 1
		return max + 1
	}
	for _, s := range steps {
		resolve(s.ID)
	}
	return depths
}
