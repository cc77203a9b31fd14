package contracts

import "context"

// Compiler turns workflow DSL text into a validated Plan.
type Compiler interface {
	Compile(ctx context.Context, source string) (*Plan, error)
}

// Executor runs a Plan's steps to completion, respecting dependency order,
// conditional gating, and failure policy.
//
// Execute returns once the plan ends: every step is terminal, a critical
// (unconditional) step has failed, or ctx was cancelled. It returns a non-nil
// error only when the plan could not start (e.g. a nil plan); step failures
// and cancellation are recorded on the Plan and its steps and never cause
// Execute to return an error.
type Executor interface {
	Execute(ctx context.Context, plan *Plan, onProgress func(ProgressEvent)) error
}

// ComplexityEstimator classifies a task description into a Complexity tier.
// prompt is the assembled system prompt (synthesized default or configured
// override, plus style guidelines and few-shot examples) that will
// accompany task in the model call, so word/token counts and keyword hits
// run over the full text the model actually sees, not just the raw task.
type ComplexityEstimator interface {
	Estimate(task string, prompt string, hints *RoutingPolicy) Complexity
}

// ProviderClient performs one LLM call against a single concrete model.
type ProviderClient interface {
	Provider() Provider
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// CompletionRequest is what a ProviderClient is asked to complete.
type CompletionRequest struct {
	Model        ModelID
	SystemPrompt string
	Prompt       string
	Temperature  float64
	MaxTokens    int
}

// CompletionResponse is a ProviderClient's raw result, before cost accounting.
type CompletionResponse struct {
	Text   string
	Tokens Tokens
}

// StreamingProviderClient is implemented by providers capable of incremental
// output. No dispatch path in this module calls CompleteStream: every
// ProviderClient is dispatched through its non-streaming Complete.
type StreamingProviderClient interface {
	ProviderClient
	CompleteStream(ctx context.Context, req CompletionRequest, onChunk func(string)) (CompletionResponse, error)
}

// Dispatcher resolves an agent + task into a model call, applying routing,
// complexity estimation, and fallback. It looks the agent up
// in its AgentCatalog itself and fails with ErrAgentNotFound if id is
// unregistered.
type Dispatcher interface {
	Dispatch(ctx context.Context, id AgentID, task string, constraints DispatchConstraints) (DispatchResult, error)
}

// CostTracker records dispatch cost and serves aggregate queries.
// Record returns the entry as stored, with ID, Timestamp, and CostUSD filled
// in, so callers (e.g. a plan-level budget cap) can observe the computed
// cost without a second, potentially racy, query.
type CostTracker interface {
	Record(entry CostEntry) CostEntry
	Summary(filter CostFilter) CostSummary
	ExportCSV(filter CostFilter) (string, error)
}

// PricingTable resolves the USD-per-1K-token rate for a (provider, model) pair.
type PricingTable interface {
	Lookup(provider Provider, model ModelID) (PricingEntry, bool)
}

// PlanStore persists in-memory Plan state across the lifetime of the process.
type PlanStore interface {
	Save(plan *Plan)
	Get(id PlanID) (*Plan, bool)
	List() []*Plan
	Prune(maxAge Timestamp)
}

// AgentCatalog resolves agent identifiers to their routing configuration.
type AgentCatalog interface {
	Get(id AgentID) (*Agent, bool)
	List() []*Agent
}
