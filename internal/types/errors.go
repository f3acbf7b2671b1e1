package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for catalog engine errors.
type ErrorCode string

// Plan error codes
const (
	PLAN_STRUCTURE_INVALID  ErrorCode = "PLAN_STRUCTURE_INVALID"
	PLAN_GENERATION_FAILED  ErrorCode = "PLAN_GENERATION_FAILED"
	PLAN_DEPENDENCY_MISSING ErrorCode = "PLAN_DEPENDENCY_MISSING"
	PLAN_UNKNOWN_TASK       ErrorCode = "PLAN_UNKNOWN_TASK"
)

// Graph database error codes
const (
	GRAPH_CONNECTION_FAILED ErrorCode = "GRAPH_CONNECTION_FAILED"
	GRAPH_CONNECTION_CLOSED ErrorCode = "GRAPH_CONNECTION_CLOSED"
	GRAPH_INVALID_CONFIG    ErrorCode = "GRAPH_INVALID_CONFIG"
	GRAPH_QUERY_FAILED      ErrorCode = "GRAPH_QUERY_FAILED"
	GRAPH_RESULT_PARSING    ErrorCode = "GRAPH_RESULT_PARSING"
)

// LLM error codes
const (
	LLM_COMPLETION_FAILED ErrorCode = "LLM_COMPLETION_FAILED"
	LLM_RESPONSE_INVALID  ErrorCode = "LLM_RESPONSE_INVALID"
	LLM_AUTH_FAILED       ErrorCode = "LLM_AUTH_FAILED"
	LLM_UNAVAILABLE       ErrorCode = "LLM_UNAVAILABLE"
)

// Entity resolution error codes
const (
	ENTITY_LOOKUP_FAILED ErrorCode = "ENTITY_LOOKUP_FAILED"
	ENTITY_NOT_FOUND     ErrorCode = "ENTITY_NOT_FOUND"
)

// Cypher validation error codes
const (
	CYPHER_DEFECT_UNREPAIRED ErrorCode = "CYPHER_DEFECT_UNREPAIRED"
	CYPHER_REVIEW_FAILED     ErrorCode = "CYPHER_REVIEW_FAILED"
)

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
)

// CatalogError represents a structured error with error code, message, and
// optional cause. It supports error wrapping and retryability hints.
type CatalogError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *CatalogError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *CatalogError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *CatalogError) Is(target error) bool {
	var catErr *CatalogError
	if errors.As(target, &catErr) {
		return e.Code == catErr.Code
	}
	return false
}

// NewError creates a new non-retryable CatalogError with the given code and message.
func NewError(code ErrorCode, message string) *CatalogError {
	return &CatalogError{
		Code:    code,
		Message: message,
	}
}

// NewRetryableError creates a new retryable CatalogError with the given code
// and message. Use this for transient errors that may succeed on retry.
func NewRetryableError(code ErrorCode, message string) *CatalogError {
	return &CatalogError{
		Code:      code,
		Message:   message,
		Retryable: true,
	}
}

// WrapError creates a new non-retryable CatalogError that wraps an existing error.
func WrapError(code ErrorCode, message string, cause error) *CatalogError {
	return &CatalogError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
