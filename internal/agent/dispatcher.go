package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// Dispatcher implements contracts.Dispatcher, composing the agent catalog,
// complexity estimator, prompt builder, fallback registry, and cost tracker
// into a single per-call sequence: look up, estimate, select, call, record.
type Dispatcher struct {
	Catalog    contracts.AgentCatalog
	Estimator  contracts.ComplexityEstimator
	Registry   *Registry
	Tracker    contracts.CostTracker
	MaxExample int
}

// NewDispatcher constructs a Dispatcher from its collaborators.
func NewDispatcher(catalog contracts.AgentCatalog, estimator contracts.ComplexityEstimator, registry *Registry, tracker contracts.CostTracker) *Dispatcher {
	return &Dispatcher{Catalog: catalog, Estimator: estimator, Registry: registry, Tracker: tracker, MaxExample: DefaultMaxExampleLen}
}

// WithMaxExample overrides the default few-shot example length limit above
// which an example is dropped from the prompt.
// n <= 0 leaves DefaultMaxExampleLen in effect. Returns d for chaining at
// construction time.
func (d *Dispatcher) WithMaxExample(n int) *Dispatcher {
	if n > 0 {
		d.MaxExample = n
	}
	return d
}

// Dispatch implements contracts.Dispatcher.
func (d *Dispatcher) Dispatch(ctx context.Context, id contracts.AgentID, task string, constraints contracts.DispatchConstraints) (contracts.DispatchResult, error) {
	ag, ok := d.Catalog.Get(id)
	if !ok {
		return contracts.DispatchResult{}, fmt.Errorf("%w: %s", contracts.ErrAgentNotFound, id)
	}
	if ag.Routing.DefaultModel == "" && len(ag.Routing.LocalCandidates) == 0 && len(ag.Routing.RemoteCandidates) == 0 {
		return contracts.DispatchResult{}, fmt.Errorf("%w: agent %s has no candidates or default model", contracts.ErrInvalidConfig, id)
	}

	timeout := ag.Routing.Timeout
	if timeout <= 0 {
		timeout = contracts.DefaultTimeoutMs
	}
	dispatchCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	system := buildSystemPrompt(ag)
	examples := sanitizeExamples(ag.Routing.Examples, d.effectiveMaxExample())
	promptForModel := withExamples(system, examples)
	userMsg := buildUserMessage(task, "", constraints)

	complexity := constraints.Override
	if complexity == "" {
		complexity = d.Estimator.Estimate(task, promptForModel, ag.Routing.Policy)
	}
	model := selectModel(ag.Routing, complexity, constraints)
	chain := fallbackChain(ag.Routing, model)

	start := time.Now()
	result, dispatchErr := d.Registry.Attempt(dispatchCtx, chain, func(m contracts.ModelID) contracts.CompletionRequest {
		return contracts.CompletionRequest{
			Model:        m,
			SystemPrompt: promptForModel,
			Prompt:       userMsg,
			Temperature:  ag.Routing.Temperature,
			MaxTokens:    ag.Routing.MaxTokens,
		}
	})
	duration := contracts.TimeoutMs(time.Since(start).Milliseconds())

	entry := contracts.CostEntry{
		AgentID: ag.ID,
		Guild:   ag.Guild,
		Task:    task,
		Duration: duration,
	}

	if dispatchErr != nil {
		finalErr := dispatchErr
		if dispatchCtx.Err() != nil {
			finalErr = fmt.Errorf("%w: %v", contracts.ErrTimeout, dispatchCtx.Err())
		}
		entry.Success = false
		entry.Provider = "" // unknown — every candidate failed
		entry.Model = model
		d.Tracker.Record(entry)
		return contracts.DispatchResult{}, finalErr
	}

	entry.Success = true
	entry.Provider = result.Provider
	entry.Model = result.Model
	entry.Tokens = result.Response.Tokens
	recorded := d.Tracker.Record(entry)

	return contracts.DispatchResult{
		Output:     result.Response.Text,
		DurationMs: duration,
		Tokens:     result.Response.Tokens,
		ModelUsed:  result.Model,
		Provider:   result.Provider,
		CostUSD:    recorded.CostUSD,
	}, nil
}

func (d *Dispatcher) effectiveMaxExample() int {
	if d.MaxExample > 0 {
		return d.MaxExample
	}
	return DefaultMaxExampleLen
}

func withExamples(system string, examples []contracts.FewShotExample) string {
	if len(examples) == 0 {
		return system
	}
	out := system + "\n\nExamples:"
	for _, ex := range examples {
		out += fmt.Sprintf("\nUser: %s\nAssistant: %s", ex.User, ex.Assistant)
	}
	return out
}
