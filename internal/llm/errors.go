package llm

import (
	"fmt"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// NewAuthError creates an authentication error for provider integration.
func NewAuthError(provider string, cause error) error {
	return types.WrapError(types.LLM_AUTH_FAILED,
		fmt.Sprintf("authentication failed for provider %s", provider), cause)
}

// TranslateError translates generic provider errors into catalog errors based
// on error message content. Timeouts and rate limits are marked retryable.
func TranslateError(provider string, err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "401"):
		return NewAuthError(provider, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"),
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"),
		strings.Contains(msg, "connection refused") || strings.Contains(msg, "unavailable"):
		e := types.WrapError(types.LLM_UNAVAILABLE,
			fmt.Sprintf("provider %s unavailable", provider), err)
		e.Retryable = true
		return e
	default:
		return types.WrapError(types.LLM_COMPLETION_FAILED,
			fmt.Sprintf("completion failed for provider %s", provider), err)
	}
}
