package compiler

import (
	"regexp"
	"strings"
)

var (
	thenSplitRe = regexp.MustCompile(`(?i)\bTHEN\b`)
	andSplitRe  = regexp.MustCompile(`(?i)\bAND\b`)
	leadOpRe    = regexp.MustCompile(`(?i)^\s*(THEN|AND|IF)\b`)
	adjacentOpRe = regexp.MustCompile(`(?i)\b(THEN|AND)\s+(THEN|AND)\b`)
)

// splitPhases splits trimmed DSL text on the THEN operator, word-bounded and
// case-insensitive, preserving phase order.
func splitPhases(text string) []string {
	parts := thenSplitRe.Split(text, -1)
	phases := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			phases = append(phases, p)
		}
	}
	return phases
}

// splitTaskTokens splits one phase on the AND operator into ordered task
// tokens.
func splitTaskTokens(phase string) []string {
	parts := andSplitRe.Split(phase, -1)
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// hasLeadingOperator reports whether text begins with THEN, AND, or IF.
func hasLeadingOperator(text string) bool {
	return leadOpRe.MatchString(text)
}

// hasAdjacentOperators reports whether text contains two operator words back
// to back (e.g. "... THEN THEN ..." or "... THEN AND ...").
func hasAdjacentOperators(text string) bool {
	return adjacentOpRe.MatchString(text)
}
