package providers

import (
	"context"
	"os"

	"github.com/tmc/langchaingo/llms/openai"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// OpenAIProvider implements llm.Provider for OpenAI models.
type OpenAIProvider struct {
	client *openai.LLM
	config llm.ProviderConfig
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg llm.ProviderConfig) (*OpenAIProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, llm.NewAuthError("openai", nil)
	}

	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.DefaultModel != "" {
		opts = append(opts, openai.WithModel(cfg.DefaultModel))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, llm.TranslateError("openai", err)
	}

	return &OpenAIProvider{client: client, config: cfg}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends a completion request.
func (p *OpenAIProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, types.WrapError(types.LLM_COMPLETION_FAILED, "invalid completion request", err)
	}

	resp, err := p.client.GenerateContent(ctx, toLangchainMessages(req.Messages), buildCallOptions(req)...)
	if err != nil {
		return nil, llm.TranslateError("openai", err)
	}

	return fromLangchainResponse(resp, p.model(req)), nil
}

// Health checks provider connectivity with a minimal completion.
func (p *OpenAIProvider) Health(ctx context.Context) types.HealthStatus {
	_, err := p.Complete(ctx, llm.NewCompletionRequest(
		[]llm.Message{llm.NewUserMessage("ping")},
		llm.WithMaxTokens(1),
	))
	if err != nil {
		return types.Unhealthy(err.Error())
	}
	return types.Healthy("openai reachable")
}

func (p *OpenAIProvider) model(req llm.CompletionRequest) string {
	if req.Model != "" {
		return req.Model
	}
	return p.config.DefaultModel
}
