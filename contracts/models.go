package contracts

// Agent is the read-only routing configuration for a named worker,
// materialized by an external catalog loader and consumed here.
type Agent struct {
	ID             AgentID
	Title          string
	Guild          string
	Responsibilities []string
	KPIs           []string
	Routing        RoutingConfig
}

// RoutingConfig describes how a request for this agent is routed to a model.
type RoutingConfig struct {
	LocalCandidates  []ModelID
	RemoteCandidates []ModelID
	DefaultModel     ModelID
	Temperature      float64
	MaxTokens        int
	Timeout          TimeoutMs
	Policy           *RoutingPolicy
	SystemPrompt     string
	StyleGuidelines  string
	Examples         []FewShotExample
}

// TimeoutMs is a duration expressed in milliseconds.
type TimeoutMs int64

// DefaultTimeoutMs is applied when an agent's routing config leaves Timeout unset.
const DefaultTimeoutMs TimeoutMs = 30_000

// RoutingPolicy carries optional complexity-estimation overrides.
type RoutingPolicy struct {
	KeywordHints         []string
	LowWordMax           int
	HighWordMin          int
	PreferRemoteKeywords []string
	PreferLocalKeywords  []string
}

// FewShotExample is one user/assistant example pair for prompt construction.
type FewShotExample struct {
	User      string
	Assistant string
}

// Plan is a compiled, validated execution graph produced by the Workflow Compiler.
type Plan struct {
	ID          PlanID
	Description string
	CreatedAt   Timestamp
	Status      PlanStatus
	Steps       []*Step
	Metadata    PlanMetadata
}

// PlanMetadata carries compiler-derived and optional execution metadata.
type PlanMetadata struct {
	TotalSteps        int
	ParallelBatches   int
	EstimatedDuration TimeoutMs
	OriginalText      string
	// BudgetLimitUSD is an optional plan-level cost cap;
	// zero means no cap.
	BudgetLimitUSD float64
}

// Step is a single node in a Plan's dependency DAG.
type Step struct {
	ID           StepID
	AgentID      AgentID
	Task         string
	Dependencies map[StepID]struct{}
	Condition    *Condition
	Status       StepStatus
	Result       *StepResult
}

// Condition gates a step's execution on the outcome of a prior step.
type Condition struct {
	TargetStepID StepID // resolved from "previous" at compile time
	Operator     ConditionOperator
	Value        string // only meaningful for IF_CONTAINS
}

// StepResult captures the outcome of an executed step.
type StepResult struct {
	Output      string
	Error       string
	Duration    TimeoutMs
	StartedAt   Timestamp
	CompletedAt Timestamp
	ModelUsed   ModelID
	Provider    Provider
	Tokens      Tokens
}

// Tokens is the input/output/total token usage of one dispatch.
type Tokens struct {
	Input  TokenCount
	Output TokenCount
	Total  TokenCount
}

// CostEntry is an immutable record of one agent dispatch's token usage and cost.
type CostEntry struct {
	ID        string
	AgentID   AgentID
	Guild     string
	Provider  Provider
	Model     ModelID
	Task      string
	Tokens    Tokens
	CostUSD   float64
	Timestamp Timestamp
	Duration  TimeoutMs
	Success   bool
}

// PricingEntry is a per-1K-token USD cost pair for one (provider, model) key.
type PricingEntry struct {
	InputPer1KUSD  float64
	OutputPer1KUSD float64
}

// StreamEvent is one message on the duplex streaming surface.
type StreamEvent struct {
	Type      StreamEventType
	AgentID   AgentID
	Task      string
	Content   string // set on StreamChunk
	Response  string // set on StreamComplete
	KPIs      map[string]string
	Error     string // set on StreamError
	Timestamp Timestamp
}

// CostSummary is the aggregated view returned by CostTracker.Summary.
type CostSummary struct {
	TotalCost     float64
	TotalTasks    int
	AvgCostPerTask float64
	ByProvider    map[Provider]CostBreakdown
	ByAgent       map[AgentID]CostBreakdown
	ByGuild       map[string]CostBreakdown
	Recent        []CostEntry
}

// CostBreakdown is a per-dimension rollup within a CostSummary.
type CostBreakdown struct {
	Cost  float64
	Tasks int
}

// CostFilter narrows a Summary/export query.
type CostFilter struct {
	AgentID   AgentID
	Guild     string
	StartTime Timestamp
	EndTime   Timestamp
	Limit     int
}

// ProgressEvent is emitted by the Plan Executor after each batch's results are
// merged and once more when the plan ends or is cancelled; step transitions
// within a batch are not reported one by one.
type ProgressEvent struct {
	PlanID         PlanID
	CurrentStep    int // 1-based index of first running step, 0 if none
	TotalSteps     int
	CompletedCount int
	FailedCount    int
	SkippedCount   int
	Status         PlanStatus
}

// DispatchConstraints carries caller overrides for model selection.
type DispatchConstraints struct {
	Model      ModelID
	Preference RoutingPreference
	Override   Complexity // complexity override, rule 1
}

// DispatchResult is what the Agent Dispatcher returns for one call.
type DispatchResult struct {
	Output     string
	DurationMs TimeoutMs
	Tokens     Tokens
	ModelUsed  ModelID
	Provider   Provider
	// CostUSD mirrors the CostEntry the dispatcher recorded for this call,
	// so the executor can enforce an optional plan-level budget cap
	// without re-deriving pricing itself.
	CostUSD float64
}
