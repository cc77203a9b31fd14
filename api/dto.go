package api

import (
	"sort"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// HealthResponse is the body for GET /healthz.
type HealthResponse struct {
	Status       string `json:"status"`
	Initialized  bool   `json:"initialized"`
	TimestampISO string `json:"timestampISO"`
}

// AgentDTO is the wire shape of an Agent returned by listAgents.
type AgentDTO struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Guild            string   `json:"guild"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	KPIs             []string `json:"kpis,omitempty"`
	DefaultModel     string   `json:"defaultModel"`
	LocalCandidates  []string `json:"localCandidates,omitempty"`
	RemoteCandidates []string `json:"remoteCandidates,omitempty"`
}

func agentToDTO(a *contracts.Agent) AgentDTO {
	dto := AgentDTO{
		ID:               string(a.ID),
		Title:            a.Title,
		Guild:            a.Guild,
		Responsibilities: a.Responsibilities,
		KPIs:             a.KPIs,
		DefaultModel:     string(a.Routing.DefaultModel),
	}
	for _, m := range a.Routing.LocalCandidates {
		dto.LocalCandidates = append(dto.LocalCandidates, string(m))
	}
	for _, m := range a.Routing.RemoteCandidates {
		dto.RemoteCandidates = append(dto.RemoteCandidates, string(m))
	}
	return dto
}

// ExecuteRequest is the body for POST /api/v1/agents/:id/execute.
type ExecuteRequest struct {
	AgentID string `json:"agentId"`
	Task    string `json:"task" binding:"required"`
	Context string `json:"context,omitempty"`
}

// TaskResultDTO is the response body for the execute operation.
type TaskResultDTO struct {
	Output     string  `json:"output"`
	DurationMs int64   `json:"durationMs"`
	Tokens     int64   `json:"totalTokens"`
	ModelUsed  string  `json:"modelUsed"`
	Provider   string  `json:"provider"`
	CostUSD    float64 `json:"costUsd"`
}

func dispatchResultToDTO(r contracts.DispatchResult) TaskResultDTO {
	return TaskResultDTO{
		Output:     r.Output,
		DurationMs: int64(r.DurationMs),
		Tokens:     int64(r.Tokens.Total),
		ModelUsed:  string(r.ModelUsed),
		Provider:   string(r.Provider),
		CostUSD:    r.CostUSD,
	}
}

// HistoryEntryDTO is one past dispatch returned by the history operation.
type HistoryEntryDTO struct {
	ID        string  `json:"id"`
	AgentID   string  `json:"agentId"`
	Guild     string  `json:"guild"`
	Provider  string  `json:"provider"`
	Model     string  `json:"model"`
	Task      string  `json:"task"`
	CostUSD   float64 `json:"costUsd"`
	Timestamp int64   `json:"timestamp"`
	Duration  int64   `json:"durationMs"`
	Success   bool    `json:"success"`
}

func costEntryToHistoryDTO(e contracts.CostEntry) HistoryEntryDTO {
	return HistoryEntryDTO{
		ID:        e.ID,
		AgentID:   string(e.AgentID),
		Guild:     e.Guild,
		Provider:  string(e.Provider),
		Model:     string(e.Model),
		Task:      e.Task,
		CostUSD:   e.CostUSD,
		Timestamp: int64(e.Timestamp),
		Duration:  int64(e.Duration),
		Success:   e.Success,
	}
}

// AgentStatsDTO is the response body for the stats operation.
type AgentStatsDTO struct {
	AgentID        string  `json:"agentId"`
	TotalCalls     int     `json:"totalCalls"`
	SuccessCount   int     `json:"successCount"`
	FailureCount   int     `json:"failureCount"`
	TotalCost      float64 `json:"totalCost"`
	AvgCostPerCall float64 `json:"avgCostPerCall"`
}

// PlanDTO is the wire shape of a compiled or executing Plan.
type PlanDTO struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	CreatedAt   int64          `json:"createdAt"`
	Status      string         `json:"status"`
	Steps       []StepDTO      `json:"steps"`
	Metadata    PlanMetaDTO    `json:"metadata"`
}

// PlanMetaDTO mirrors contracts.PlanMetadata.
type PlanMetaDTO struct {
	TotalSteps        int     `json:"totalSteps"`
	ParallelBatches    int     `json:"parallelBatches"`
	EstimatedDuration int64   `json:"estimatedDurationMs"`
	BudgetLimitUSD    float64 `json:"budgetLimitUsd,omitempty"`
}

// StepDTO mirrors contracts.Step.
type StepDTO struct {
	ID           string         `json:"id"`
	AgentID      string         `json:"agentId"`
	Task         string         `json:"task"`
	Dependencies []string       `json:"dependencies,omitempty"`
	Condition    *ConditionDTO  `json:"condition,omitempty"`
	Status       string         `json:"status"`
	Result       *StepResultDTO `json:"result,omitempty"`
}

// ConditionDTO mirrors contracts.Condition.
type ConditionDTO struct {
	TargetStepID string `json:"targetStepId"`
	Operator     string `json:"operator"`
	Value        string `json:"value,omitempty"`
}

// StepResultDTO mirrors contracts.StepResult.
type StepResultDTO struct {
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
	Duration    int64  `json:"durationMs"`
	ModelUsed   string `json:"modelUsed,omitempty"`
	Provider    string `json:"provider,omitempty"`
	TotalTokens int64  `json:"totalTokens"`
}

func planToDTO(p *contracts.Plan) PlanDTO {
	dto := PlanDTO{
		ID:          string(p.ID),
		Description: p.Description,
		CreatedAt:   int64(p.CreatedAt),
		Status:      p.Status.String(),
		Metadata: PlanMetaDTO{
			TotalSteps:        p.Metadata.TotalSteps,
			ParallelBatches:   p.Metadata.ParallelBatches,
			EstimatedDuration: int64(p.Metadata.EstimatedDuration),
			BudgetLimitUSD:    p.Metadata.BudgetLimitUSD,
		},
	}
	for _, s := range p.Steps {
		dto.Steps = append(dto.Steps, stepToDTO(s))
	}
	return dto
}

func stepToDTO(s *contracts.Step) StepDTO {
	dto := StepDTO{
		ID:      string(s.ID),
		AgentID: string(s.AgentID),
		Task:    s.Task,
		Status:  s.Status.String(),
	}
	deps := make([]string, 0, len(s.Dependencies))
	for d := range s.Dependencies {
		deps = append(deps, string(d))
	}
	sort.Strings(deps)
	dto.Dependencies = deps

	if s.Condition != nil {
		dto.Condition = &ConditionDTO{
			TargetStepID: string(s.Condition.TargetStepID),
			Operator:     string(s.Condition.Operator),
			Value:        s.Condition.Value,
		}
	}
	if s.Result != nil {
		dto.Result = &StepResultDTO{
			Output:      s.Result.Output,
			Error:       s.Result.Error,
			Duration:    int64(s.Result.Duration),
			ModelUsed:   string(s.Result.ModelUsed),
			Provider:    string(s.Result.Provider),
			TotalTokens: int64(s.Result.Tokens.Total),
		}
	}
	return dto
}

// CompileWorkflowRequest is the body for POST /api/v1/workflows/compile and
// .../execute.
type CompileWorkflowRequest struct {
	Text           string `json:"text" binding:"required"`
	DefaultAgentID string `json:"defaultAgentId,omitempty"`
}

// CancelPlanResponse is the body for POST /api/v1/plans/:id/cancel.
type CancelPlanResponse struct {
	Success bool   `json:"success"`
	PlanID  string `json:"planId"`
}

// CostBreakdownDTO mirrors contracts.CostBreakdown.
type CostBreakdownDTO struct {
	Cost  float64 `json:"cost"`
	Tasks int     `json:"tasks"`
}

// CostSummaryDTO mirrors contracts.CostSummary.
type CostSummaryDTO struct {
	TotalCost      float64                     `json:"totalCost"`
	TotalTasks     int                         `json:"totalTasks"`
	AvgCostPerTask float64                     `json:"avgCostPerTask"`
	ByProvider     map[string]CostBreakdownDTO `json:"byProvider"`
	ByAgent        map[string]CostBreakdownDTO `json:"byAgent"`
	ByGuild        map[string]CostBreakdownDTO `json:"byGuild"`
	Recent         []HistoryEntryDTO           `json:"recent"`
}

func costSummaryToDTO(s contracts.CostSummary) CostSummaryDTO {
	dto := CostSummaryDTO{
		TotalCost:      s.TotalCost,
		TotalTasks:     s.TotalTasks,
		AvgCostPerTask: s.AvgCostPerTask,
		ByProvider:     make(map[string]CostBreakdownDTO, len(s.ByProvider)),
		ByAgent:        make(map[string]CostBreakdownDTO, len(s.ByAgent)),
		ByGuild:        make(map[string]CostBreakdownDTO, len(s.ByGuild)),
	}
	for k, v := range s.ByProvider {
		dto.ByProvider[string(k)] = CostBreakdownDTO{Cost: v.Cost, Tasks: v.Tasks}
	}
	for k, v := range s.ByAgent {
		dto.ByAgent[string(k)] = CostBreakdownDTO{Cost: v.Cost, Tasks: v.Tasks}
	}
	for k, v := range s.ByGuild {
		dto.ByGuild[k] = CostBreakdownDTO{Cost: v.Cost, Tasks: v.Tasks}
	}
	for _, e := range s.Recent {
		dto.Recent = append(dto.Recent, costEntryToHistoryDTO(e))
	}
	return dto
}
