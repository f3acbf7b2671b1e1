// Package config loads and validates engine configuration from YAML files
// with ${ENV_VAR} interpolation for secrets.
package config

import (
	"time"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
)

// Config is the root configuration for the catalog engine.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Neo4j   Neo4jConfig   `mapstructure:"neo4j" yaml:"neo4j"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine"`
}

// LLMConfig selects the completion provider and its per-provider settings.
type LLMConfig struct {
	Provider  string                        `mapstructure:"provider" yaml:"provider" validate:"required,oneof=anthropic openai ollama"`
	Providers map[string]llm.ProviderConfig `mapstructure:"providers" yaml:"providers"`
}

// ProviderConfig returns the settings for the selected provider, zero-valued
// when the providers block omits it.
func (c LLMConfig) ProviderConfig() llm.ProviderConfig {
	return c.Providers[c.Provider]
}

// Neo4jConfig holds graph database connection settings.
type Neo4jConfig struct {
	URI               string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username          string        `mapstructure:"username" yaml:"username" validate:"required"`
	Password          string        `mapstructure:"password" yaml:"password"`
	Database          string        `mapstructure:"database" yaml:"database"`
	MaxPoolSize       int           `mapstructure:"max_pool_size" yaml:"max_pool_size" validate:"min=1"`
	ConnectionTimeout time.Duration `mapstructure:"connection_timeout" yaml:"connection_timeout"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json text"`
}

// EngineConfig tunes request handling.
type EngineConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"min=0"`
}
