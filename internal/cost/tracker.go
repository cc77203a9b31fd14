package cost

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// DefaultMaxEntries bounds the ring when the caller does not override it.
const DefaultMaxEntries = 10000

const csvHeader = "id,agentId,guild,provider,model,task,inputTokens,outputTokens,totalTokens,cost,duration,success"

// Tracker implements contracts.CostTracker as a capped ring of entries
// guarded by a mutex: a fixed-size slice that evicts the oldest entry once
// full, with aggregation computed on demand from the live entries.
type Tracker struct {
	mu         sync.Mutex
	pricing    contracts.PricingTable
	entries    []contracts.CostEntry
	maxEntries int
}

// NewTracker constructs a Tracker bound to pricing with the given capacity
// (0 uses DefaultMaxEntries).
func NewTracker(pricing contracts.PricingTable, maxEntries int) *Tracker {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Tracker{pricing: pricing, maxEntries: maxEntries}
}

// Record implements contracts.CostTracker.Record. The caller passes a
// CostEntry with CostUSD, ID, and Timestamp left zero; Record fills them in,
// computes cost from the pricing table, and appends to the ring, evicting
// the oldest entry if at capacity.
func (t *Tracker) Record(entry contracts.CostEntry) contracts.CostEntry {
	pricing, _ := t.pricing.Lookup(entry.Provider, entry.Model)
	entry.CostUSD = (float64(entry.Tokens.Input)/1000.0)*pricing.InputPer1KUSD +
		(float64(entry.Tokens.Output)/1000.0)*pricing.OutputPer1KUSD

	now := time.Now()
	entry.Timestamp = contracts.Timestamp(now.UnixMilli())
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("cost_%d_%s", now.UnixMilli(), randomBase36(9))
	}

	t.mu.Lock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.maxEntries {
		overflow := len(t.entries) - t.maxEntries
		t.entries = t.entries[overflow:]
	}
	t.mu.Unlock()
	return entry
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Alphabet[rand.Intn(len(base36Alphabet))]
	}
	return string(b)
}

// Summary implements contracts.CostTracker.Summary.
func (t *Tracker) Summary(filter contracts.CostFilter) contracts.CostSummary {
	t.mu.Lock()
	matching := make([]contracts.CostEntry, 0, len(t.entries))
	for _, e := range t.entries {
		if matchesFilter(e, filter) {
			matching = append(matching, e)
		}
	}
	t.mu.Unlock()

	summary := contracts.CostSummary{
		ByProvider: make(map[contracts.Provider]contracts.CostBreakdown),
		ByAgent:    make(map[contracts.AgentID]contracts.CostBreakdown),
		ByGuild:    make(map[string]contracts.CostBreakdown),
	}

	for _, e := range matching {
		summary.TotalCost += e.CostUSD
		summary.TotalTasks++

		pb := summary.ByProvider[e.Provider]
		pb.Cost += e.CostUSD
		pb.Tasks++
		summary.ByProvider[e.Provider] = pb

		ab := summary.ByAgent[e.AgentID]
		ab.Cost += e.CostUSD
		ab.Tasks++
		summary.ByAgent[e.AgentID] = ab

		gb := summary.ByGuild[e.Guild]
		gb.Cost += e.CostUSD
		gb.Tasks++
		summary.ByGuild[e.Guild] = gb
	}

	if summary.TotalTasks > 0 {
		summary.AvgCostPerTask = summary.TotalCost / float64(summary.TotalTasks)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > len(matching) {
		limit = len(matching)
	}
	summary.Recent = append(summary.Recent, matching[len(matching)-limit:]...)

	return summary
}

func matchesFilter(e contracts.CostEntry, f contracts.CostFilter) bool {
	if f.AgentID != "" && e.AgentID != f.AgentID {
		return false
	}
	if f.Guild != "" && e.Guild != f.Guild {
		return false
	}
	if f.StartTime != 0 && e.Timestamp < f.StartTime {
		return false
	}
	if f.EndTime != 0 && e.Timestamp > f.EndTime {
		return false
	}
	return true
}

// ExportCSV implements contracts.CostTracker.ExportCSV.
func (t *Tracker) ExportCSV(filter contracts.CostFilter) (string, error) {
	t.mu.Lock()
	matching := make([]contracts.CostEntry, 0, len(t.entries))
	for _, e := range t.entries {
		if matchesFilter(e, filter) {
			matching = append(matching, e)
		}
	}
	t.mu.Unlock()

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")
	for _, e := range matching {
		task := e.Task
		if len(task) > 50 {
			task = task[:50]
		}
		fmt.Fprintf(&b, "%s,%s,%s,%s,%s,%s,%d,%d,%d,%s,%d,%s\n",
			e.ID, e.AgentID, e.Guild, e.Provider, e.Model, csvEscape(task),
			e.Tokens.Input, e.Tokens.Output, e.Tokens.Total,
			strconv.FormatFloat(e.CostUSD, 'f', 6, 64),
			e.Duration, strconv.FormatBool(e.Success))
	}
	return b.String(), nil
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
