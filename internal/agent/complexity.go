// Package agent resolves a task and agent routing configuration into a
// model call: complexity estimation, prompt construction, provider
// selection with fallback, and cost recording.
package agent

import (
	"math"
	"strings"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

const (
	defaultLowWordMax  = 80
	defaultHighWordMin = 300
)

var hiKeywords = []string{"design", "architecture", "rewrite", "refactor", "end-to-end", "full", "spec"}
var loKeywords = []string{"typo", "rename", "format", "lint", "small", "quick"}

// ComplexityEstimator implements contracts.ComplexityEstimator with an
// ordered rule set: a high-tier keyword hit or word/token count above the
// high threshold gives high, then a low-tier keyword hit or word count below
// the low threshold gives low, else medium. An explicit complexity override
// is applied by the Dispatcher before Estimate is called. A single-purpose
// struct with one Estimate method.
type ComplexityEstimator struct{}

// NewComplexityEstimator constructs a ComplexityEstimator.
func NewComplexityEstimator() *ComplexityEstimator {
	return &ComplexityEstimator{}
}

// Estimate implements contracts.ComplexityEstimator. Word/token counts and
// keyword hits run over task and prompt combined, so a system prompt's
// style guidelines or few-shot examples can push a short task into a
// higher tier.
func (ComplexityEstimator) Estimate(task string, prompt string, policy *contracts.RoutingPolicy) contracts.Complexity {
	text := strings.ToLower(task + "\n" + prompt)
	words := strings.Fields(text)
	tokens := int(math.Ceil(float64(len(text)) / 4.0))

	lowMax := defaultLowWordMax
	highMin := defaultHighWordMin
	var preferRemote, preferLocal []string
	if policy != nil {
		if policy.LowWordMax > 0 {
			lowMax = policy.LowWordMax
		}
		if policy.HighWordMin > 0 {
			highMin = policy.HighWordMin
		}
		preferRemote = policy.PreferRemoteKeywords
		preferLocal = policy.PreferLocalKeywords
	}

	hiHit := containsAny(text, hiKeywords) || containsAny(text, preferRemote)
	loHit := containsAny(text, loKeywords) || containsAny(text, preferLocal)

	if hiHit || len(words) > highMin || float64(tokens) > 0.8*float64(highMin) {
		return contracts.ComplexityHigh
	}
	if loHit || len(words) < lowMax {
		return contracts.ComplexityLow
	}
	return contracts.ComplexityMedium
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// selectModel applies caller override precedence first (explicit model,
// then preference), falling back to the routing config's local/remote
// candidates coupled to the estimated complexity tier.
func selectModel(routing contracts.RoutingConfig, complexity contracts.Complexity, constraints contracts.DispatchConstraints) contracts.ModelID {
	if constraints.Model != "" {
		return constraints.Model
	}
	switch constraints.Preference {
	case contracts.PreferLocal:
		if len(routing.LocalCandidates) > 0 {
			return routing.LocalCandidates[0]
		}
	case contracts.PreferRemote:
		if len(routing.RemoteCandidates) > 0 {
			return routing.RemoteCandidates[0]
		}
	}
	switch complexity {
	case contracts.ComplexityLow:
		if len(routing.LocalCandidates) > 0 {
			return routing.LocalCandidates[0]
		}
	case contracts.ComplexityHigh:
		if len(routing.RemoteCandidates) > 0 {
			return routing.RemoteCandidates[0]
		}
	}
	return routing.DefaultModel
}

// fallbackChain builds the de-duplicated, order-preserving model chain:
// [resolved, default model, ...remaining local candidates, ...remote candidates].
func fallbackChain(routing contracts.RoutingConfig, resolved contracts.ModelID) []contracts.ModelID {
	seen := make(map[contracts.ModelID]struct{})
	var chain []contracts.ModelID
	add := func(m contracts.ModelID) {
		if m == "" {
			return
		}
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		chain = append(chain, m)
	}
	add(resolved)
	add(routing.DefaultModel)
	for _, m := range routing.LocalCandidates {
		add(m)
	}
	for _, m := range routing.RemoteCandidates {
		add(m)
	}
	return chain
}
