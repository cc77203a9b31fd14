package cost_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/cost"
)

func TestPricingTable_ResolutionOrder(t *testing.T) {
	table := cost.NewPricingTable()

	e, ok := table.Lookup("openai", "gpt-4")
	require.True(t, ok)
	assert.Equal(t, 0.030, e.InputPer1KUSD)

	// Unknown model, known provider -> provider-level fallback.
	e2, ok := table.Lookup("openai", "some-unlisted-model")
	require.True(t, ok)
	assert.Equal(t, 0.010, e2.InputPer1KUSD)

	// Local ollama provider -> its zero-cost provider-level entry.
	e3, ok := table.Lookup("ollama", "llama3")
	require.True(t, ok)
	assert.Equal(t, 0.0, e3.InputPer1KUSD)
	assert.Equal(t, 0.0, e3.OutputPer1KUSD)
}

func TestTracker_CostAggregationScenario(t *testing.T) {
	table := cost.NewPricingTable()
	tr := cost.NewTracker(table, 0)

	tr.Record(contracts.CostEntry{AgentID: "a1", Guild: "g1", Provider: "openai", Model: "gpt-4",
		Tokens: contracts.Tokens{Input: 1000, Output: 500, Total: 1500}, Success: true})
	tr.Record(contracts.CostEntry{AgentID: "a2", Guild: "g1", Provider: "gemini", Model: "gemini-2.0-flash",
		Tokens: contracts.Tokens{Input: 2000, Output: 2000, Total: 4000}, Success: true})
	tr.Record(contracts.CostEntry{AgentID: "a3", Guild: "g2", Provider: "ollama", Model: "llama3",
		Tokens: contracts.Tokens{Input: 3000, Output: 3000, Total: 6000}, Success: true})

	summary := tr.Summary(contracts.CostFilter{})
	assert.InDelta(t, 0.060, summary.ByProvider["openai"].Cost, 1e-9)
	assert.InDelta(t, 0.002, summary.ByProvider["gemini"].Cost, 1e-9)
	assert.InDelta(t, 0.000, summary.ByProvider["ollama"].Cost, 1e-9)
	assert.InDelta(t, 0.062, summary.TotalCost, 1e-9)
	assert.Equal(t, 3, summary.TotalTasks)
}

func TestTracker_ZeroTokensZeroCost(t *testing.T) {
	tr := cost.NewTracker(cost.NewPricingTable(), 0)
	tr.Record(contracts.CostEntry{Provider: "openai", Model: "gpt-4"})
	summary := tr.Summary(contracts.CostFilter{})
	assert.Equal(t, 0.0, summary.TotalCost)
}

func TestTracker_RingEviction(t *testing.T) {
	tr := cost.NewTracker(cost.NewPricingTable(), 3)
	for i := 0; i < 5; i++ {
		tr.Record(contracts.CostEntry{AgentID: contracts.AgentID(string(rune('a' + i))), Provider: "ollama"})
	}
	summary := tr.Summary(contracts.CostFilter{Limit: 10})
	assert.Equal(t, 3, summary.TotalTasks)
	assert.Len(t, summary.Recent, 3)
}

func TestTracker_ExportCSV(t *testing.T) {
	tr := cost.NewTracker(cost.NewPricingTable(), 0)
	tr.Record(contracts.CostEntry{AgentID: "a1", Guild: "g1", Provider: "openai", Model: "gpt-4",
		Task: "do the thing", Tokens: contracts.Tokens{Input: 1000, Output: 500, Total: 1500}, Success: true})

	out, err := tr.ExportCSV(contracts.CostFilter{})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,agentId,guild,provider,model,task,inputTokens,outputTokens,totalTokens,cost,duration,success", lines[0])
	assert.Contains(t, lines[1], "0.060000")
	assert.Contains(t, lines[1], "true")
}
