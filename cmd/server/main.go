// Package main is the composition root for the orchestration HTTP service:
// it wires the catalog, cost tracker, provider registry, compiler,
// dispatcher, executor, and REST surface, then serves until signalled.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/swarmrun/runtime/api"
	"github.com/anthropics/swarmrun/runtime/config"
	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/agent"
	"github.com/anthropics/swarmrun/runtime/internal/catalog"
	"github.com/anthropics/swarmrun/runtime/internal/compiler"
	"github.com/anthropics/swarmrun/runtime/internal/cost"
	"github.com/anthropics/swarmrun/runtime/internal/orchestration"
	"github.com/anthropics/swarmrun/runtime/internal/store"
	"github.com/anthropics/swarmrun/runtime/internal/telemetry"
)

func main() {
	configFile := flag.String("config", "", "optional YAML/JSON file overriding environment defaults")
	flag.Parse()

	cfg, err := config.NewLoader().WithConfigFile(*configFile).Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	tp, err := telemetry.NewProvider("swarmrun")
	if err != nil {
		log.Fatalf("starting telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	pricing := buildPricingTable(*cfg)
	watchPricingOverride(*cfg, pricing)

	cat := catalog.New(defaultRoster()...)
	registry := buildProviderRegistry(*cfg)
	tracker := cost.NewTracker(pricing, cfg.MaxCostEntries)
	dispatcher := agent.NewDispatcher(cat, agent.NewComplexityEstimator(), registry, tracker).
		WithMaxExample(cfg.ExampleMaxLen)
	executor := orchestration.NewExecutor(dispatcher, 0)
	planStore := store.New(cfg.MaxStoredPlans)
	comp := compiler.New("websmith")

	handlers := api.NewHandlers(cat, comp, executor, dispatcher, tracker, planStore).
		WithAuditDir(cfg.AuditDir).
		WithPlanRetention(time.Duration(cfg.PlanRetentionSeconds) * time.Second)
	server := api.NewServer(cfg.ListenAddr, handlers)

	log.Printf("listening on %s", cfg.ListenAddr)

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
		close(done)
	}()

	if err := server.Start(); err != nil {
		log.Printf("server error: %v", err)
	}
	<-done
	log.Println("stopped")
}

// defaultRoster is the built-in agent catalog served when no external
// registry file is configured: one agent per guild, reachable over both a
// local and a remote candidate model.
func defaultRoster() []contracts.Agent {
	return []contracts.Agent{
		{
			ID:               "websmith",
			Title:            "Web Smith",
			Guild:            "engineering",
			Responsibilities: []string{"build frontend surfaces", "wire API clients"},
			KPIs:             []string{"lighthouse score", "build time"},
			Routing: contracts.RoutingConfig{
				LocalCandidates:  []contracts.ModelID{"llama3"},
				RemoteCandidates: []contracts.ModelID{"gpt-4o", "gpt-4"},
				DefaultModel:     "gpt-4o",
				Temperature:      0.3,
				MaxTokens:        4096,
				Timeout:          contracts.TimeoutMs(60000),
				SystemPrompt:     "You are a pragmatic frontend engineer.",
			},
		},
		{
			ID:               "crafter",
			Title:            "Design Crafter",
			Guild:            "design",
			Responsibilities: []string{"review visual design", "author style guidelines"},
			KPIs:             []string{"design review turnaround"},
			Routing: contracts.RoutingConfig{
				LocalCandidates:  []contracts.ModelID{"llama3"},
				RemoteCandidates: []contracts.ModelID{"claude-sonnet-4-5", "claude-opus-4-5"},
				DefaultModel:     "claude-sonnet-4-5",
				Temperature:      0.5,
				MaxTokens:        4096,
				Timeout:          contracts.TimeoutMs(60000),
				StyleGuidelines:  "Prefer concrete, actionable feedback over general praise.",
			},
		},
		{
			ID:               "huntress",
			Title:            "Security Huntress",
			Guild:            "security",
			Responsibilities: []string{"run security scans", "triage findings"},
			KPIs:             []string{"mean time to triage"},
			Routing: contracts.RoutingConfig{
				LocalCandidates:  []contracts.ModelID{"llama3"},
				RemoteCandidates: []contracts.ModelID{"gemini-2.0-flash", "claude-sonnet-4-5"},
				DefaultModel:     "gemini-2.0-flash",
				Temperature:      0.1,
				MaxTokens:        2048,
				Timeout:          contracts.TimeoutMs(45000),
				SystemPrompt:     "You are a meticulous application security reviewer.",
			},
		},
	}
}

// buildProviderRegistry always wires a local zero-cost "ollama" provider,
// plus one HTTPProviderClient per configured provider.
func buildProviderRegistry(cfg config.ServerConfig) *agent.Registry {
	registry := agent.NewRegistry()

	registry.RegisterClient(agent.NewHTTPProviderClient("ollama", "http://localhost:11434", ""))
	registry.RegisterModel("llama3", "ollama")

	for name, pc := range cfg.Providers {
		provider := contracts.Provider(name)
		registry.RegisterClient(agent.NewHTTPProviderClient(provider, pc.BaseURL, pc.APIKey))
	}
	registry.RegisterModel("gpt-4", "openai")
	registry.RegisterModel("gpt-4o", "openai")
	registry.RegisterModel("claude-sonnet-4-5", "anthropic")
	registry.RegisterModel("claude-opus-4-5", "anthropic")
	registry.RegisterModel("gemini-2.0-flash", "gemini")

	return registry
}

func buildPricingTable(cfg config.ServerConfig) *cost.PricingTable {
	if cfg.PricingFile == "" {
		return cost.NewPricingTable()
	}
	overrides, err := config.LoadPricingOverride(cfg.PricingFile)
	if err != nil {
		log.Printf("pricing override %s: %v; falling back to defaults", cfg.PricingFile, err)
		return cost.NewPricingTable()
	}
	merged := make(map[string]contracts.PricingEntry, len(cost.DefaultPricing)+len(overrides))
	for k, v := range cost.DefaultPricing {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return cost.NewPricingTableWithEntries(merged)
}

func watchPricingOverride(cfg config.ServerConfig, pricing *cost.PricingTable) {
	if cfg.PricingFile == "" {
		return
	}
	_, err := config.WatchPricingFile(cfg.PricingFile, func(entries map[string]contracts.PricingEntry) {
		merged := make(map[string]contracts.PricingEntry, len(cost.DefaultPricing)+len(entries))
		for k, v := range cost.DefaultPricing {
			merged[k] = v
		}
		for k, v := range entries {
			merged[k] = v
		}
		pricing.Replace(merged)
		log.Printf("pricing override reloaded from %s", cfg.PricingFile)
	}, func(err error) {
		log.Printf("pricing override watch error: %v", err)
	})
	if err != nil {
		log.Printf("starting pricing override watch: %v", err)
	}
}
