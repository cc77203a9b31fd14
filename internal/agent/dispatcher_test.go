package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/agent"
	"github.com/anthropics/swarmrun/runtime/internal/cost"
)

type fakeCatalog struct {
	agents map[contracts.AgentID]*contracts.Agent
}

func (c *fakeCatalog) Get(id contracts.AgentID) (*contracts.Agent, bool) {
	a, ok := c.agents[id]
	return a, ok
}
func (c *fakeCatalog) List() []*contracts.Agent {
	var out []*contracts.Agent
	for _, a := range c.agents {
		out = append(out, a)
	}
	return out
}

type fakeProvider struct {
	provider contracts.Provider
	fail     bool
}

func (f *fakeProvider) Provider() contracts.Provider { return f.provider }
func (f *fakeProvider) Complete(_ context.Context, req contracts.CompletionRequest) (contracts.CompletionResponse, error) {
	if f.fail {
		return contracts.CompletionResponse{}, errors.New("boom")
	}
	return contracts.CompletionResponse{Text: "done", Tokens: contracts.Tokens{Input: 10, Output: 10, Total: 20}}, nil
}

func TestDispatcher_AgentNotFound(t *testing.T) {
	catalog := &fakeCatalog{agents: map[contracts.AgentID]*contracts.Agent{}}
	tracker := cost.NewTracker(cost.NewPricingTable(), 0)
	d := agent.NewDispatcher(catalog, agent.NewComplexityEstimator(), agent.NewRegistry(), tracker)

	_, err := d.Dispatch(context.Background(), "missing", "do it", contracts.DispatchConstraints{})
	assert.True(t, errors.Is(err, contracts.ErrAgentNotFound))
}

func TestDispatcher_InvalidConfig(t *testing.T) {
	catalog := &fakeCatalog{agents: map[contracts.AgentID]*contracts.Agent{
		"svc": {ID: "svc", Title: "Service Agent"},
	}}
	tracker := cost.NewTracker(cost.NewPricingTable(), 0)
	d := agent.NewDispatcher(catalog, agent.NewComplexityEstimator(), agent.NewRegistry(), tracker)

	_, err := d.Dispatch(context.Background(), "svc", "do it", contracts.DispatchConstraints{})
	assert.True(t, errors.Is(err, contracts.ErrInvalidConfig))
}

func TestDispatcher_SuccessRecordsCost(t *testing.T) {
	registry := agent.NewRegistry()
	registry.RegisterClient(&fakeProvider{provider: "openai"})
	registry.RegisterModel("gpt-4", "openai")

	catalog := &fakeCatalog{agents: map[contracts.AgentID]*contracts.Agent{
		"svc": {ID: "svc", Title: "Service Agent", Guild: "core",
			Routing: contracts.RoutingConfig{DefaultModel: "gpt-4"},
		},
	}}
	tracker := cost.NewTracker(cost.NewPricingTable(), 0)
	d := agent.NewDispatcher(catalog, agent.NewComplexityEstimator(), registry, tracker)

	res, err := d.Dispatch(context.Background(), "svc", "do it", contracts.DispatchConstraints{})
	require.NoError(t, err)
	assert.Equal(t, contracts.ModelID("gpt-4"), res.ModelUsed)
	assert.Equal(t, contracts.Provider("openai"), res.Provider)
	assert.Greater(t, res.CostUSD, 0.0)

	summary := tracker.Summary(contracts.CostFilter{})
	assert.Equal(t, 1, summary.TotalTasks)
}

func TestDispatcher_FallbackOnFailure(t *testing.T) {
	registry := agent.NewRegistry()
	registry.RegisterClient(&fakeProvider{provider: "local", fail: true})
	registry.RegisterClient(&fakeProvider{provider: "openai"})
	registry.RegisterModel("local-model", "local")
	registry.RegisterModel("gpt-4", "openai")

	catalog := &fakeCatalog{agents: map[contracts.AgentID]*contracts.Agent{
		"svc": {ID: "svc", Title: "Service Agent",
			Routing: contracts.RoutingConfig{
				DefaultModel:     "local-model",
				RemoteCandidates: []contracts.ModelID{"gpt-4"},
			},
		},
	}}
	tracker := cost.NewTracker(cost.NewPricingTable(), 0)
	d := agent.NewDispatcher(catalog, agent.NewComplexityEstimator(), registry, tracker)

	res, err := d.Dispatch(context.Background(), "svc", "do it", contracts.DispatchConstraints{})
	require.NoError(t, err)
	assert.Equal(t, contracts.ModelID("gpt-4"), res.ModelUsed)
}

func TestDispatcher_ProviderExhausted(t *testing.T) {
	registry := agent.NewRegistry()
	registry.RegisterClient(&fakeProvider{provider: "local", fail: true})
	registry.RegisterModel("local-model", "local")

	catalog := &fakeCatalog{agents: map[contracts.AgentID]*contracts.Agent{
		"svc": {ID: "svc", Routing: contracts.RoutingConfig{DefaultModel: "local-model"}},
	}}
	tracker := cost.NewTracker(cost.NewPricingTable(), 0)
	d := agent.NewDispatcher(catalog, agent.NewComplexityEstimator(), registry, tracker)

	_, err := d.Dispatch(context.Background(), "svc", "do it", contracts.DispatchConstraints{})
	assert.True(t, errors.Is(err, contracts.ErrProviderExhausted))
}
