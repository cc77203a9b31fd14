package compiler

import (
	"regexp"
	"strings"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

const agentPrefixMaxLen = 30

var (
	ifSuccessRe  = regexp.MustCompile(`(?i)\s+IF_SUCCESS\s*$`)
	ifFailureRe  = regexp.MustCompile(`(?i)\s+IF_FAILURE\s*$`)
	ifContainsRe = regexp.MustCompile(`(?i)\s+IF_CONTAINS\(\s*"([^"]*)"\s*\)\s*$`)
	ifNaturalSuccessRe = regexp.MustCompile(`(?i)\s+IF\s+(success|passing)\s*$`)
	ifNaturalFailureRe = regexp.MustCompile(`(?i)\s+IF\s+(failure|failing)\s*$`)
)

// parsedToken is one task token after conditional-suffix and agentId-prefix
// extraction, still missing its resolved step/dependency identity.
type parsedToken struct {
	agentID   contracts.AgentID // empty if the token did not carry an explicit prefix
	hasAgent  bool
	task      string
	condition *contracts.Condition // TargetStepID left empty; Compile fills it in
}

// stripCondition extracts a trailing conditional suffix, giving explicit
// IF_SUCCESS/IF_FAILURE/IF_CONTAINS forms precedence over the
// natural-language IF success|passing / IF failure|failing forms.
func stripCondition(token string) (string, *contracts.Condition) {
	if m := ifContainsRe.FindStringSubmatchIndex(token); m != nil {
		value := token[m[2]:m[3]]
		rest := strings.TrimSpace(token[:m[0]])
		return rest, &contracts.Condition{Operator: contracts.IfContains, Value: value}
	}
	if loc := ifSuccessRe.FindStringIndex(token); loc != nil {
		rest := strings.TrimSpace(token[:loc[0]])
		return rest, &contracts.Condition{Operator: contracts.IfSuccess}
	}
	if loc := ifFailureRe.FindStringIndex(token); loc != nil {
		rest := strings.TrimSpace(token[:loc[0]])
		return rest, &contracts.Condition{Operator: contracts.IfFailure}
	}
	if loc := ifNaturalSuccessRe.FindStringIndex(token); loc != nil {
		rest := strings.TrimSpace(token[:loc[0]])
		return rest, &contracts.Condition{Operator: contracts.IfSuccess}
	}
	if loc := ifNaturalFailureRe.FindStringIndex(token); loc != nil {
		rest := strings.TrimSpace(token[:loc[0]])
		return rest, &contracts.Condition{Operator: contracts.IfFailure}
	}
	return token, nil
}

// stripAgentPrefix extracts an "agentId:" prefix: the colon must appear
// within the first agentPrefixMaxLen characters and the candidate prefix
// must contain no spaces. A colon appearing later, or a prefix containing a
// space, is treated as ordinary task text (the "stray colon" rule).
func stripAgentPrefix(text string) (contracts.AgentID, bool, string) {
	idx := strings.IndexByte(text, ':')
	if idx < 0 || idx >= agentPrefixMaxLen {
		return "", false, text
	}
	prefix := text[:idx]
	if prefix == "" || strings.ContainsAny(prefix, " \t\n") {
		return "", false, text
	}
	rest := strings.TrimSpace(text[idx+1:])
	return contracts.AgentID(prefix), true, rest
}

// parseTaskToken applies condition-stripping then agent-prefix-stripping to
// one raw task token.
func parseTaskToken(raw string) parsedToken {
	text, cond := stripCondition(strings.TrimSpace(raw))
	agentID, hasAgent, task := stripAgentPrefix(text)
	return parsedToken{
		agentID:   agentID,
		hasAgent:  hasAgent,
		task:      task,
		condition: cond,
	}
}
