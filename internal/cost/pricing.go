// Package cost resolves per-call USD pricing and tracks recorded cost
// entries with aggregation and CSV export.
package cost

import (
	"strings"
	"sync"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// zeroCostProvider is the fallback pricing key for local models that carry
// no monetary cost.
const zeroCostProvider = "ollama"

// DefaultPricing seeds the table with a handful of well-known provider/model
// rates, expressed per 1K tokens.
var DefaultPricing = map[string]contracts.PricingEntry{
	"openai:gpt-4":                   {InputPer1KUSD: 0.030, OutputPer1KUSD: 0.060},
	"openai:gpt-4o":                  {InputPer1KUSD: 0.005, OutputPer1KUSD: 0.015},
	"anthropic:claude-sonnet-4-5":    {InputPer1KUSD: 0.003, OutputPer1KUSD: 0.015},
	"anthropic:claude-opus-4-5":      {InputPer1KUSD: 0.015, OutputPer1KUSD: 0.075},
	"gemini:gemini-2.0-flash":        {InputPer1KUSD: 0.00025, OutputPer1KUSD: 0.00075},
	"openai":                         {InputPer1KUSD: 0.010, OutputPer1KUSD: 0.030},
	"anthropic":                      {InputPer1KUSD: 0.003, OutputPer1KUSD: 0.015},
	"gemini":                         {InputPer1KUSD: 0.0001, OutputPer1KUSD: 0.0004},
	zeroCostProvider:                 {InputPer1KUSD: 0, OutputPer1KUSD: 0},
}

// PricingTable implements contracts.PricingTable over an RWMutex-guarded
// map keyed by "provider:model" or bare "provider", with three-level
// fallback resolution down to zero-cost.
type PricingTable struct {
	mu      sync.RWMutex
	entries map[string]contracts.PricingEntry
}

// NewPricingTable constructs a PricingTable seeded with DefaultPricing.
func NewPricingTable() *PricingTable {
	return NewPricingTableWithEntries(DefaultPricing)
}

// NewPricingTableWithEntries constructs a PricingTable from a caller-supplied
// seed map (e.g. loaded from a YAML override file).
func NewPricingTableWithEntries(seed map[string]contracts.PricingEntry) *PricingTable {
	entries := make(map[string]contracts.PricingEntry, len(seed))
	for k, v := range seed {
		entries[strings.ToLower(k)] = v
	}
	return &PricingTable{entries: entries}
}

// Lookup implements contracts.PricingTable: try "provider:model" (both
// lowercased), fall back to "provider", fall back to the zero-cost entry.
func (t *PricingTable) Lookup(provider contracts.Provider, model contracts.ModelID) (contracts.PricingEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p := strings.ToLower(string(provider))
	m := strings.ToLower(string(model))

	if e, ok := t.entries[p+":"+m]; ok {
		return e, true
	}
	if e, ok := t.entries[p]; ok {
		return e, true
	}
	if e, ok := t.entries[zeroCostProvider]; ok {
		return e, true
	}
	return contracts.PricingEntry{}, false
}

// Replace atomically swaps the whole table, used by the fsnotify-driven
// hot-reload in config/pricing_override.go.
func (t *PricingTable) Replace(entries map[string]contracts.PricingEntry) {
	normalized := make(map[string]contracts.PricingEntry, len(entries))
	for k, v := range entries {
		normalized[strings.ToLower(k)] = v
	}
	t.mu.Lock()
	t.entries = normalized
	t.mu.Unlock()
}
