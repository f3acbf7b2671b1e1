package providers

import (
	"context"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// OllamaProvider implements llm.Provider for local Ollama models.
type OllamaProvider struct {
	client *ollama.LLM
	config llm.ProviderConfig
}

// NewOllamaProvider creates a new Ollama provider.
func NewOllamaProvider(cfg llm.ProviderConfig) (*OllamaProvider, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "http://localhost:11434"
	}

	opts := []ollama.Option{ollama.WithServerURL(serverURL)}
	if cfg.DefaultModel != "" {
		opts = append(opts, ollama.WithModel(cfg.DefaultModel))
	}

	client, err := ollama.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}

	return &OllamaProvider{client: client, config: cfg}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Complete sends a completion request.
func (p *OllamaProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED, "invalid completion request", err)
	}

	resp, err := p.client.GenerateContent(ctx, toLangchainMessages(req.Messages), buildCallOptions(req)...)
	if err != nil {
		return nil, llm.TranslateError("ollama", err)
	}

	return fromLangchainResponse(resp, req.Model), nil
}

// Health checks provider connectivity with a minimal completion.
func (p *OllamaProvider) Health(ctx context.Context) types.HealthStatus {
	_, err := p.Complete(ctx, llm.NewCompletionRequest(
		[]llm.Message{llm.NewUserMessage("ping")},
		llm.WithMaxTokens(1),
	))
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("ollama reachable")
}
