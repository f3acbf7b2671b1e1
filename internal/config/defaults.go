package config

import (
	"time"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
)

// DefaultConfig returns a Config with sensible default values. Secrets are
// expected from the environment.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "anthropic",
			Providers: map[string]llm.ProviderConfig{
				"anthropic": {APIKey: "${ANTHROPIC_API_KEY}"},
				"openai":    {APIKey: "${OPENAI_API_KEY}"},
				"ollama":    {BaseURL: "http://localhost:11434"},
			},
		},
		Neo4j: Neo4jConfig{
			URI:               "bolt://localhost:7687",
			Username:          "neo4j",
			Password:          "${NEO4J_PASSWORD}",
			Database:          "neo4j",
			MaxPoolSize:       25,
			ConnectionTimeout: 15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			RequestTimeout: 2 * time.Minute,
		},
	}
}
