package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/anthropic"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// AnthropicProvider implements llm.Provider for Anthropic's Claude models.
type AnthropicProvider struct {
	client *anthropic.LLM
	config llm.ProviderConfig
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg llm.ProviderConfig) (*AnthropicProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewAuthError("anthropic", nil)
	}

	opts := []anthropic.Option{anthropic.WithToken(apiKey)}
	if cfg.DefaultModel != "" {
		opts = append(opts, anthropic.WithModel(cfg.DefaultModel))
	}

	client, err := anthropic.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("anthropic", err)
	}

	return &AnthropicProvider{client: client, config: cfg}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Complete sends a completion request.
func (p *AnthropicProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED, "invalid completion request", err)
	}

	resp, err := p.client.GenerateContent(ctx, toLangchainMessages(req.Messages), buildCallOptions(req)...)
	if err != nil {
		return nil, llm.TranslateError("anthropic", err)
	}

	return fromLangchainResponse(resp, p.model(req)), nil
}

// Health checks provider connectivity with a minimal completion.
func (p *AnthropicProvider) Health(ctx context.Context) types.HealthStatus {
	_, err := p.Complete(ctx, llm.NewCompletionRequest(
		[]llm.Message{llm.NewUserMessage("ping")},
		llm.WithMaxTokens(1),
	))
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("anthropic reachable")
}

func (p *AnthropicProvider) model(req llm.CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return p.config.DefaultModel
}
