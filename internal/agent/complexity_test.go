package agent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/agent"
)

func TestEstimate_KeywordRules(t *testing.T) {
	e := agent.NewComplexityEstimator()
	assert.Equal(t, contracts.ComplexityHigh, e.Estimate("full architecture redesign", "", nil))
	assert.Equal(t, contracts.ComplexityLow, e.Estimate("fix typo", "", nil))
}

func TestEstimate_WordCountThresholds(t *testing.T) {
	e := agent.NewComplexityEstimator()
	shortTask := "update the button label"
	assert.Equal(t, contracts.ComplexityLow, e.Estimate(shortTask, "", nil))

	longWords := make([]byte, 0)
	for i := 0; i < 400; i++ {
		longWords = append(longWords, []byte("word ")...)
	}
	assert.Equal(t, contracts.ComplexityHigh, e.Estimate(string(longWords), "", nil))
}

func TestEstimate_PolicyOverrideKeywords(t *testing.T) {
	e := agent.NewComplexityEstimator()
	policy := &contracts.RoutingPolicy{PreferLocalKeywords: []string{"bespoke-quick-term"}}
	assert.Equal(t, contracts.ComplexityLow, e.Estimate("bespoke-quick-term change", "", policy))
}

func TestEstimate_PromptWordsCountTowardThreshold(t *testing.T) {
	e := agent.NewComplexityEstimator()
	shortTask := "update the button label"

	longPrompt := make([]byte, 0)
	for i := 0; i < 400; i++ {
		longPrompt = append(longPrompt, []byte("word ")...)
	}
	assert.Equal(t, contracts.ComplexityHigh, e.Estimate(shortTask, string(longPrompt), nil))
}

func TestEstimate_PromptKeywordHit(t *testing.T) {
	e := agent.NewComplexityEstimator()
	assert.Equal(t, contracts.ComplexityHigh, e.Estimate("review this", "Guidelines:\nFollow our architecture rewrite standards.", nil))
}
