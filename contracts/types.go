// Package contracts defines the shared types and interfaces for the
// orchestration runtime: plans, steps, agents, cost entries, and the
// capability interfaces every other package composes against.
package contracts

// PlanID uniquely identifies a compiled plan.
type PlanID string

// StepID uniquely identifies a step within a plan.
type StepID string

// AgentID identifies a registered agent.
type AgentID string

// ModelID identifies an LLM model (e.g., "gpt-4", "claude-sonnet-4-5-20250929").
type ModelID string

// Provider identifies an LLM provider (e.g., "anthropic", "openai", "ollama").
type Provider string

// TokenCount represents a count of tokens.
type TokenCount int64

// Currency represents a currency code (e.g., "USD").
type Currency string

// Timestamp represents a Unix timestamp in milliseconds.
type Timestamp int64
