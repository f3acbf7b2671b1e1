package graph

import (
	"context"
	"sync"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// QueryCall records one Query invocation on the mock client.
type QueryCall struct {
	Cypher string
	Params map[string]any
}

// MockClient is a mock implementation of Client for testing. Results are
// returned in order of Query calls; the last configured result repeats once
// the script is exhausted. All calls are recorded for verification.
type MockClient struct {
	mu sync.Mutex

	connected bool
	results   []QueryResult
	errs      []error
	calls     []QueryCall

	// ResultFunc, when set, computes the result per query and overrides the
	// scripted results list.
	ResultFunc func(cypher string, params map[string]any) (QueryResult, error)
}

// NewMockClient creates a new mock graph client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// WithResult appends a scripted result.
func (m *MockClient) WithResult(result QueryResult) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, result)
	m.errs = append(m.errs, nil)
	return m
}

// WithError appends a scripted error.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, QueryResult{})
	m.errs = append(m.errs, err)
	return m
}

// Connect marks the client connected.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

// Close marks the client disconnected.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// Health reports healthy while connected.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return types.Unhealthy("not connected")
	}
	return types.Healthy("mock")
}

// Query returns the next scripted result and records the call.
func (m *MockClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return QueryResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, QueryCall{Cypher: cypher, Params: params})

	if m.ResultFunc != nil {
		return m.ResultFunc(cypher, params)
	}

	if len(m.results) == 0 {
		return QueryResult{}, nil
	}

	result, err := m.results[0], m.errs[0]
	if len(m.results) > 1 {
		m.results = m.results[1:]
		m.errs = m.errs[1:]
	}
	return result, err
}

// Calls returns a copy of all recorded Query calls.
func (m *MockClient) Calls() []QueryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]QueryCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// QueryCount returns the number of Query invocations.
func (m *MockClient) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
