package contracts

import "errors"

// Sentinel errors for the runtime layer. Wrapped with fmt.Errorf("...: %w", ...)
// at the call site so callers can still discriminate with errors.Is.
var (
	// Compiler errors
	ErrInvalidSyntax = errors.New("invalid workflow syntax")

	// Agent / dispatch errors
	ErrAgentNotFound     = errors.New("agent not found")
	ErrInvalidConfig     = errors.New("agent routing config is invalid")
	ErrProviderError     = errors.New("provider call failed")
	ErrProviderExhausted = errors.New("all providers in fallback chain failed")
	ErrTimeout           = errors.New("dispatch timed out")
	ErrCancelled         = errors.New("operation cancelled")

	// Plan / step errors
	ErrPlanNotFound = errors.New("plan not found")
	ErrStepNotFound = errors.New("step not found")
	ErrDepNotFound  = errors.New("dependency step not found")

	// Cost errors
	ErrModelUnknown    = errors.New("unknown model for pricing")
	ErrBudgetExceeded  = errors.New("plan budget exceeded")
	ErrCapacityExceeded = errors.New("capacity exceeded, oldest entries evicted")

	// Input validation
	ErrInvalidInput = errors.New("invalid input: nil or malformed")
)
