package agent

import (
	"fmt"
	"strings"

	"github.com/anthropics/swarmrun/runtime/contracts"
	"github.com/anthropics/swarmrun/runtime/internal/audit"
)

// DefaultMaxExampleLen bounds a single few-shot example's length before it
// is dropped with a warning.
const DefaultMaxExampleLen = 1200

// buildSystemPrompt assembles the system message for an agent: its
// configured prompt, or a synthesized default from title/responsibilities/
// KPIs, optionally followed by a "Guidelines:" block.
func buildSystemPrompt(agent *contracts.Agent) string {
	var b strings.Builder
	if agent.Routing.SystemPrompt != "" {
		b.WriteString(agent.Routing.SystemPrompt)
	} else {
		b.WriteString(fmt.Sprintf("You are %s.", agent.Title))
		if len(agent.Responsibilities) > 0 {
			b.WriteString(" Responsibilities: " + strings.Join(agent.Responsibilities, "; ") + ".")
		}
		if len(agent.KPIs) > 0 {
			b.WriteString(" You are measured on: " + strings.Join(agent.KPIs, ", ") + ".")
		}
		b.WriteString(" Respond precisely and only within your role.")
	}
	if agent.Routing.StyleGuidelines != "" {
		b.WriteString("\n\nGuidelines:\n")
		b.WriteString(agent.Routing.StyleGuidelines)
	}
	return b.String()
}

// sanitizeExamples drops empty pairs and examples whose combined length
// exceeds maxLen (defaulting to DefaultMaxExampleLen), logging a warning for
// each overlong example it drops.
func sanitizeExamples(examples []contracts.FewShotExample, maxLen int) []contracts.FewShotExample {
	if maxLen <= 0 {
		maxLen = DefaultMaxExampleLen
	}
	out := make([]contracts.FewShotExample, 0, len(examples))
	for _, ex := range examples {
		if ex.User == "" && ex.Assistant == "" {
			continue
		}
		if len(ex.User)+len(ex.Assistant) > maxLen {
			audit.Log("event=example_dropped reason=too_long length=%d max_len=%d", len(ex.User)+len(ex.Assistant), maxLen)
			continue
		}
		out = append(out, ex)
	}
	return out
}

// buildUserMessage assembles the user turn: the task, serialized context and
// constraints, and a terminal JSON-schema instruction.
func buildUserMessage(task string, context string, constraints contracts.DispatchConstraints) string {
	var b strings.Builder
	b.WriteString(task)
	if context != "" {
		b.WriteString("\n\nContext:\n")
		b.WriteString(context)
	}
	if constraints.Model != "" || constraints.Preference != "" || constraints.Override != "" {
		b.WriteString(fmt.Sprintf("\n\nConstraints: model=%s preference=%s complexityOverride=%s",
			constraints.Model, constraints.Preference, constraints.Override))
	}
	b.WriteString("\n\nRespond with JSON matching this schema exactly: ")
	b.WriteString(`{"description": string, "steps": [string], "estimatedComplexity": "low"|"medium"|"high"}`)
	return b.String()
}
