package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// ErrorCode identifies the machine-readable error kind in a response body.
type ErrorCode string

// Error codes for API responses.
const (
	CodeInvalidSyntax      ErrorCode = "invalid_syntax"
	CodeAgentNotFound      ErrorCode = "agent_not_found"
	CodeInvalidConfig      ErrorCode = "invalid_config"
	CodeProviderError      ErrorCode = "provider_error"
	CodeProviderExhausted  ErrorCode = "provider_exhausted"
	CodeTimeout            ErrorCode = "timeout"
	CodeCancelled          ErrorCode = "cancelled"
	CodePlanNotFound       ErrorCode = "not_found"
	CodeStepNotFound       ErrorCode = "step_not_found"
	CodeDepNotFound        ErrorCode = "dep_not_found"
	CodeModelUnknown       ErrorCode = "model_unknown"
	CodeBudgetExceeded     ErrorCode = "budget_exceeded"
	CodeInvalidInput       ErrorCode = "invalid_input"
	CodeInternalError      ErrorCode = "internal_error"
)

// HTTPError pairs a domain error with the HTTP status code it maps to.
type HTTPError struct {
	StatusCode int
	Code       ErrorCode
	Err        error
}

func (e *HTTPError) Error() string { return e.Err.Error() }
func (e *HTTPError) Unwrap() error { return e.Err }

// MapError maps a domain error to an HTTPError via an ordered errors.Is
// dispatch table.
func MapError(err error) *HTTPError {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, contracts.ErrInvalidSyntax):
		return &HTTPError{http.StatusBadRequest, CodeInvalidSyntax, err}
	case errors.Is(err, contracts.ErrAgentNotFound):
		return &HTTPError{http.StatusUnprocessableEntity, CodeAgentNotFound, err}
	case errors.Is(err, contracts.ErrInvalidConfig):
		return &HTTPError{http.StatusUnprocessableEntity, CodeInvalidConfig, err}
	case errors.Is(err, contracts.ErrProviderExhausted):
		return &HTTPError{http.StatusBadGateway, CodeProviderExhausted, err}
	case errors.Is(err, contracts.ErrProviderError):
		return &HTTPError{http.StatusBadGateway, CodeProviderError, err}
	case errors.Is(err, contracts.ErrPlanNotFound):
		return &HTTPError{http.StatusNotFound, CodePlanNotFound, err}
	case errors.Is(err, contracts.ErrStepNotFound):
		return &HTTPError{http.StatusNotFound, CodeStepNotFound, err}
	case errors.Is(err, contracts.ErrDepNotFound):
		return &HTTPError{http.StatusUnprocessableEntity, CodeDepNotFound, err}
	case errors.Is(err, contracts.ErrModelUnknown):
		return &HTTPError{http.StatusUnprocessableEntity, CodeModelUnknown, err}
	case errors.Is(err, contracts.ErrBudgetExceeded):
		return &HTTPError{http.StatusUnprocessableEntity, CodeBudgetExceeded, err}
	case errors.Is(err, contracts.ErrInvalidInput):
		return &HTTPError{http.StatusBadRequest, CodeInvalidInput, err}
	case errors.Is(err, context.Canceled), errors.Is(err, contracts.ErrCancelled):
		return &HTTPError{499, CodeCancelled, err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, contracts.ErrTimeout):
		return &HTTPError{http.StatusGatewayTimeout, CodeTimeout, err}
	default:
		return &HTTPError{http.StatusInternalServerError, CodeInternalError, err}
	}
}
