package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

var validate = validator.New()

// Validate checks structural constraints plus the cross-field rules the
// struct tags cannot express.
func Validate(cfg *Config) error {
	if cfg == nil {
		return types.NewError(types.CONFIG_VALIDATION_FAILED, "config is nil")
	}

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			msgs := make([]string, 0, len(errs))
			for _, fe := range errs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return types.NewError(types.CONFIG_VALIDATION_FAILED, strings.Join(msgs, "; "))
		}
		return types.WrapError(types.CONFIG_VALIDATION_FAILED, "config validation failed", err)
	}

	// The selected provider needs a providers entry unless it is ollama,
	// which works against a local default endpoint without credentials.
	if cfg.LLM.Provider != "ollama" {
		pc, ok := cfg.LLM.Providers[cfg.LLM.Provider]
		if !ok || pc.APIKey == "" {
			return types.NewError(types.CONFIG_VALIDATION_FAILED,
				fmt.Sprintf("llm provider %q has no API key configured", cfg.LLM.Provider))
		}
	}

	return nil
}
