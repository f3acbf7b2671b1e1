package llm

// CompletionOption is a functional option for configuring completion requests.
type CompletionOption func(*CompletionRequest)

// WithTemperature sets the temperature for the completion request.
// Lower values make output more focused and deterministic.
func WithTemperature(temperature float64) CompletionOption {
	return func(req *CompletionRequest) {
		req.Temperature = temperature
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) CompletionOption {
	return func(req *CompletionRequest) {
		req.MaxTokens = maxTokens
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) CompletionOption {
	return func(req *CompletionRequest) {
		req.Model = model
	}
}

// NewCompletionRequest creates a new completion request with the given
// messages. Additional options can be applied using the functional options
// pattern.
func NewCompletionRequest(messages []Message, opts ...CompletionOption) CompletionRequest {
	req := CompletionRequest{Messages: messages}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
