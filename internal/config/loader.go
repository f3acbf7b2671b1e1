package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads configuration from the given YAML file, interpolates ${ENV_VAR}
// placeholders, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to unmarshal config", err)
	}

	interpolate(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadWithDefaults loads the file when it exists and falls back to defaults
// otherwise. Defaults are interpolated and validated the same way.
func LoadWithDefaults(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		interpolate(cfg)
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Load(path)
}

// interpolate replaces ${VAR_NAME} placeholders in every string setting with
// the environment variable's value. Unset variables resolve to the empty
// string so validation can flag what is actually missing.
func interpolate(cfg *Config) {
	for name, pc := range cfg.LLM.Providers {
		pc.APIKey = interpolateString(pc.APIKey)
		pc.BaseURL = interpolateString(pc.BaseURL)
		pc.DefaultModel = interpolateString(pc.DefaultModel)
		cfg.LLM.Providers[name] = pc
	}
	cfg.Neo4j.URI = interpolateString(cfg.Neo4j.URI)
	cfg.Neo4j.Username = interpolateString(cfg.Neo4j.Username)
	cfg.Neo4j.Password = interpolateString(cfg.Neo4j.Password)
	cfg.Neo4j.Database = interpolateString(cfg.Neo4j.Database)
}

func interpolateString(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(name)
	})
}
