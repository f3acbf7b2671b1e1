package llm

import (
	"context"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// Provider defines the interface that all LLM providers must implement.
// It is the single capability the engine consumes from the text-generation
// collaborator: a blocking completion call plus a health probe.
//
// Providers are assumed to be non-deterministic, latency-bound, and to
// occasionally return malformed structured output; callers parse responses
// through ExtractJSON rather than trusting them.
type Provider interface {
	// Name returns the provider name (e.g., "anthropic", "openai", "ollama").
	Name() string

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Health checks the health status of the provider and its connectivity.
	Health(ctx context.Context) types.HealthStatus
}
