package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/audit"
	"github.com/anthropics/swarmrun/runtime/internal/compiler"
)

// Handlers implements the synchronous operation table over the core
// components. It holds no state of its own beyond what it was constructed
// with: every operation reads or mutates the injected catalog/store/
// dispatcher/executor/tracker.
type Handlers struct {
	Catalog    contracts.AgentCatalog
	Compiler   contracts.Compiler
	Executor   contracts.Executor
	Dispatcher contracts.Dispatcher
	Tracker    contracts.CostTracker
	Store      contracts.PlanStore

	// auditDir is the directory plan audit JSON snapshots are written to
	// after a plan reaches a terminal status. Empty disables the feature.
	auditDir string

	// planRetention bounds how long a plan stays in Store past its
	// CreatedAt timestamp, pruned best-effort on the next compile. Zero
	// disables time-based pruning (count-based eviction still applies).
	planRetention time.Duration

	// execs tracks cancel funcs for plans currently running under
	// ExecuteWorkflow, consulted by CancelPlan and drained on shutdown.
	execs *executionRegistry
}

// NewHandlers constructs a Handlers bound to the given components, with
// audit file export disabled.
func NewHandlers(catalog contracts.AgentCatalog, comp contracts.Compiler, executor contracts.Executor, dispatcher contracts.Dispatcher, tracker contracts.CostTracker, store contracts.PlanStore) *Handlers {
	return &Handlers{
		Catalog:    catalog,
		Compiler:   comp,
		Executor:   executor,
		Dispatcher: dispatcher,
		Tracker:    tracker,
		Store:      store,
		execs:      newExecutionRegistry(),
	}
}

// WithAuditDir enables per-plan audit JSON export to dir for terminal plans
// reached via ExecuteWorkflow. Returns h for chaining at construction time.
func (h *Handlers) WithAuditDir(dir string) *Handlers {
	h.auditDir = dir
	return h
}

// WithPlanRetention enables best-effort time-based pruning of Store on top
// of its count-based eviction. Returns h for chaining at construction time.
func (h *Handlers) WithPlanRetention(retention time.Duration) *Handlers {
	h.planRetention = retention
	return h
}

// pruneExpiredPlans removes plans older than planRetention, if configured.
func (h *Handlers) pruneExpiredPlans() {
	if h.planRetention <= 0 {
		return
	}
	cutoff := time.Now().Add(-h.planRetention)
	h.Store.Prune(contracts.Timestamp(cutoff.UnixMilli()))
}

// Health handles GET /healthz.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		Initialized:  true,
		TimestampISO: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListAgents handles GET /api/v1/agents.
func (h *Handlers) ListAgents(c *gin.Context) {
	agents := h.Catalog.List()
	dtos := make([]AgentDTO, 0, len(agents))
	for _, a := range agents {
		dtos = append(dtos, agentToDTO(a))
	}
	c.JSON(http.StatusOK, dtos)
}

// Execute handles POST /api/v1/agents/:id/execute.
func (h *Handlers) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, withValidation(err))
		return
	}
	req.AgentID = c.Param("id")

	task := req.Task
	if req.Context != "" {
		task = req.Context + "\n\n" + req.Task
	}

	result, err := h.Dispatcher.Dispatch(c.Request.Context(), contracts.AgentID(req.AgentID), task, contracts.DispatchConstraints{})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, dispatchResultToDTO(result))
}

// History handles GET /api/v1/agents/:id/history.
func (h *Handlers) History(c *gin.Context) {
	agentID := c.Param("id")
	limit := queryInt(c, "limit", 10)

	summary := h.Tracker.Summary(contracts.CostFilter{AgentID: contracts.AgentID(agentID), Limit: limit})
	entries := make([]HistoryEntryDTO, 0, len(summary.Recent))
	for _, e := range summary.Recent {
		entries = append(entries, costEntryToHistoryDTO(e))
	}
	c.JSON(http.StatusOK, entries)
}

// Stats handles GET /api/v1/agents/:id/stats.
func (h *Handlers) Stats(c *gin.Context) {
	agentID := contracts.AgentID(c.Param("id"))

	// A limit larger than any realistic ring size pulls every matching entry
	// into Recent so the success/failure counts below aren't truncated.
	summary := h.Tracker.Summary(contracts.CostFilter{AgentID: agentID, Limit: math.MaxInt32})

	stats := AgentStatsDTO{AgentID: string(agentID)}
	if bd, ok := summary.ByAgent[agentID]; ok {
		stats.TotalCalls = bd.Tasks
		stats.TotalCost = bd.Cost
		if bd.Tasks > 0 {
			stats.AvgCostPerCall = bd.Cost / float64(bd.Tasks)
		}
	}
	for _, e := range summary.Recent {
		if e.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
	}
	c.JSON(http.StatusOK, stats)
}

// CompileWorkflow handles POST /api/v1/workflows/compile.
func (h *Handlers) CompileWorkflow(c *gin.Context) {
	var req CompileWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, withValidation(err))
		return
	}

	comp := h.compilerFor(req.DefaultAgentID)
	plan, err := comp.Compile(c.Request.Context(), req.Text)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.pruneExpiredPlans()
	h.Store.Save(plan)
	c.JSON(http.StatusOK, planToDTO(plan))
}

// ExecuteWorkflow handles POST /api/v1/workflows/execute: compiles then runs
// a plan to a terminal state before responding.
func (h *Handlers) ExecuteWorkflow(c *gin.Context) {
	var req CompileWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, withValidation(err))
		return
	}

	comp := h.compilerFor(req.DefaultAgentID)
	plan, err := comp.Compile(c.Request.Context(), req.Text)
	if err != nil {
		writeErr(c, err)
		return
	}
	h.Store.Save(plan)

	execCtx, cancel := context.WithCancel(c.Request.Context())
	h.execs.register(plan.ID, cancel)
	defer h.execs.finish(plan.ID)
	defer cancel()

	audit.Log("event=plan_execute_requested plan_id=%s", plan.ID)
	if err := h.Executor.Execute(execCtx, plan, func(contracts.ProgressEvent) {
		h.Store.Save(plan)
	}); err != nil {
		writeErr(c, err)
		return
	}
	h.Store.Save(plan)

	if h.auditDir != "" {
		h.writeAuditFile(plan)
	}
	c.JSON(http.StatusOK, planToDTO(plan))
}

// writeAuditFile writes plan's DTO snapshot as indented JSON to
// <auditDir>/plan-<id>.json. Failures are logged, not propagated, since the
// response to the caller already reflects the plan's real terminal state.
func (h *Handlers) writeAuditFile(plan *contracts.Plan) {
	data, err := json.MarshalIndent(planToDTO(plan), "", "  ")
	if err != nil {
		audit.Log("event=audit_write_failed plan_id=%s reason=marshal error=%v", plan.ID, err)
		return
	}

	if err := os.MkdirAll(h.auditDir, 0o755); err != nil {
		audit.Log("event=audit_write_failed plan_id=%s reason=mkdir dir=%s error=%v", plan.ID, h.auditDir, err)
		return
	}

	filename := filepath.Join(h.auditDir, fmt.Sprintf("plan-%s.json", plan.ID))
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		audit.Log("event=audit_write_failed plan_id=%s reason=write file=%s error=%v", plan.ID, filename, err)
		return
	}
	audit.Log("event=audit_written plan_id=%s file=%s", plan.ID, filename)
}

// ListPlans handles GET /api/v1/plans.
func (h *Handlers) ListPlans(c *gin.Context) {
	plans := h.Store.List()
	status := c.Query("status")
	dtos := make([]PlanDTO, 0, len(plans))
	for _, p := range plans {
		if status != "" && p.Status.String() != status {
			continue
		}
		dtos = append(dtos, planToDTO(p))
	}
	c.JSON(http.StatusOK, dtos)
}

// GetPlan handles GET /api/v1/plans/:id.
func (h *Handlers) GetPlan(c *gin.Context) {
	plan, ok := h.Store.Get(contracts.PlanID(c.Param("id")))
	if !ok {
		writeErr(c, contracts.ErrPlanNotFound)
		return
	}
	c.JSON(http.StatusOK, planToDTO(plan))
}

// CancelPlan handles POST /api/v1/plans/:id/cancel.
func (h *Handlers) CancelPlan(c *gin.Context) {
	planID := contracts.PlanID(c.Param("id"))
	plan, ok := h.Store.Get(planID)
	if !ok {
		writeErr(c, contracts.ErrPlanNotFound)
		return
	}
	h.execs.cancel(planID)
	plan.Status = contracts.PlanCancelled
	h.Store.Save(plan)
	c.JSON(http.StatusOK, CancelPlanResponse{Success: true, PlanID: string(planID)})
}

// CostSummary handles GET /api/v1/costs/summary.
func (h *Handlers) CostSummary(c *gin.Context) {
	filter := contracts.CostFilter{
		AgentID: contracts.AgentID(c.Query("agentId")),
		Guild:   c.Query("guild"),
		Limit:   queryInt(c, "limit", 10),
	}
	c.JSON(http.StatusOK, costSummaryToDTO(h.Tracker.Summary(filter)))
}

// CostByAgent handles GET /api/v1/costs/by-agent/:id.
func (h *Handlers) CostByAgent(c *gin.Context) {
	agentID := contracts.AgentID(c.Param("id"))
	summary := h.Tracker.Summary(contracts.CostFilter{AgentID: agentID})
	bd := summary.ByAgent[agentID]
	c.JSON(http.StatusOK, CostBreakdownDTO{Cost: bd.Cost, Tasks: bd.Tasks})
}

// CostByGuild handles GET /api/v1/costs/by-guild/:guild.
func (h *Handlers) CostByGuild(c *gin.Context) {
	guild := c.Param("guild")
	summary := h.Tracker.Summary(contracts.CostFilter{Guild: guild})
	bd := summary.ByGuild[guild]
	c.JSON(http.StatusOK, CostBreakdownDTO{Cost: bd.Cost, Tasks: bd.Tasks})
}

// ExportCosts handles GET /api/v1/costs/export.csv.
func (h *Handlers) ExportCosts(c *gin.Context) {
	csv, err := h.Tracker.ExportCSV(contracts.CostFilter{})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.Data(http.StatusOK, "text/csv", []byte(csv))
}

// compilerFor returns h.Compiler, or a fresh compiler.Compiler bound to
// defaultAgentID when the caller overrides it for this call.
func (h *Handlers) compilerFor(defaultAgentID string) contracts.Compiler {
	if defaultAgentID == "" {
		return h.Compiler
	}
	return compiler.New(contracts.AgentID(defaultAgentID))
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n := 0
	for _, ch := range v {
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}

// withValidation wraps a gin binding/validation error (struct tag failures
// surfaced via go-playground/validator) so MapError routes it to 400.
func withValidation(err error) error {
	return &wrappedInvalidInput{err}
}

type wrappedInvalidInput struct{ err error }

func (w *wrappedInvalidInput) Error() string { return w.err.Error() }
func (w *wrappedInvalidInput) Unwrap() error { return contracts.ErrInvalidInput }

func writeErr(c *gin.Context, err error) {
	httpErr := MapError(err)
	c.AbortWithStatusJSON(httpErr.StatusCode, gin.H{
		"code":    httpErr.Code,
		"message": httpErr.Error(),
	})
}
