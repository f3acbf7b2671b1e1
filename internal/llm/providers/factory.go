package providers

import (
	"fmt"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
)

// New creates a provider by name. Supported names: anthropic, openai, ollama.
func New(name string, cfg llm.ProviderConfig) (llm.Provider, error) {
	switch name {
	case "anthropic":
		return NewAnthropicProvider(cfg)
	case "openai":
		return NewOpenAIProvider(cfg)
	case "ollama":
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", name)
	}
}
