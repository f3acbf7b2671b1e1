package providers

import (
	"context"
	"sync"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// MockProvider is a scriptable llm.Provider for tests. Responses are returned
// in order; the last response repeats once the script is exhausted. All
// requests are recorded for verification.
type MockProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []llm.CompletionRequest
}

// NewMockProvider creates a mock provider that replies with the given
// responses in order.
func NewMockProvider(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

// FailWith makes every Complete call return err.
func (m *MockProvider) FailWith(err error) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Name returns the provider name.
func (m *MockProvider) Name() string {
	return "mock"
}

// Complete returns the next scripted response.
func (m *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &llm.CompletionResponse{Message: llm.NewAssistantMessage("")}, nil
	}

	content := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}

	return &llm.CompletionResponse{
		Model:   "mock",
		Message: llm.NewAssistantMessage(content),
	}, nil
}

// Health always reports healthy.
func (m *MockProvider) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("mock")
}

// Requests returns a copy of every recorded request.
func (m *MockProvider) Requests() []llm.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]llm.CompletionRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of Complete invocations.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
