package agent

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

var tracer = otel.Tracer("github.com/anthropics/swarmrun/runtime/internal/agent")

// Registry resolves which ProviderClient serves a given model. It is
// composed explicitly by the caller (the composition root) rather than
// discovered dynamically.
type Registry struct {
	modelProvider map[contracts.ModelID]contracts.Provider
	clients       map[contracts.Provider]contracts.ProviderClient
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		modelProvider: make(map[contracts.ModelID]contracts.Provider),
		clients:       make(map[contracts.Provider]contracts.ProviderClient),
	}
}

// RegisterClient adds a ProviderClient, keyed by its own Provider().
func (r *Registry) RegisterClient(client contracts.ProviderClient) {
	r.clients[client.Provider()] = client
}

// RegisterModel associates a model with the provider that serves it.
func (r *Registry) RegisterModel(model contracts.ModelID, provider contracts.Provider) {
	r.modelProvider[model] = provider
}

func (r *Registry) clientFor(model contracts.ModelID) (contracts.ProviderClient, contracts.Provider, bool) {
	provider, ok := r.modelProvider[model]
	if !ok {
		return nil, "", false
	}
	client, ok := r.clients[provider]
	return client, provider, ok
}

// FallbackResult is what the fallback chain returns on success.
type FallbackResult struct {
	Response contracts.CompletionResponse
	Model    contracts.ModelID
	Provider contracts.Provider
}

// Attempt walks chain in order, invoking each model's registered
// ProviderClient and stopping at the first success, with one trace span per
// attempt. Returns ErrProviderExhausted if every model fails.
func (r *Registry) Attempt(ctx context.Context, chain []contracts.ModelID, build func(contracts.ModelID) contracts.CompletionRequest) (FallbackResult, error) {
	var lastErr error
	for _, model := range chain {
		client, provider, ok := r.clientFor(model)
		if !ok {
			continue
		}

		attemptCtx, span := tracer.Start(ctx, "agent.fallback_attempt",
			trace.WithAttributes(
				attribute.String("swarmrun.model", string(model)),
				attribute.String("swarmrun.provider", string(provider)),
			))

		resp, err := client.Complete(attemptCtx, build(model))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			lastErr = err
			continue
		}

		span.SetStatus(codes.Ok, "")
		span.End()
		return FallbackResult{Response: resp, Model: model, Provider: provider}, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no provider client registered for any candidate model")
	}
	return FallbackResult{}, fmt.Errorf("%w: %v", contracts.ErrProviderExhausted, lastErr)
}
