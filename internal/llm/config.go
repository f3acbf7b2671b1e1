package llm

// ProviderConfig contains connection settings for one LLM provider.
type ProviderConfig struct {
	// APIKey authenticates against hosted providers. When empty, the
	// provider falls back to its conventional environment variable.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// BaseURL overrides the provider endpoint (used by ollama).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// DefaultModel is the model used when a request does not name one.
	DefaultModel string `mapstructure:"default_model" yaml:"default_model"`
}
