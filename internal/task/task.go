// Package task implements the static task catalog an execution plan may
// invoke: entity validation, Cypher synthesis and execution, connection
// discovery, analysis, and user clarification. Each task is a function of
// resolved parameters to a step result; tasks that touch the graph database
// acquire and release their own request-scoped access on every call.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// Deps holds the collaborators shared by all tasks. The schema catalog is
// immutable process-wide configuration; the graph client and LLM provider
// are stateless across requests.
type Deps struct {
	Graph   graph.Client
	LLM     llm.Provider
	Catalog *schema.Catalog
	Logger  *slog.Logger
}

// Runner executes one task invocation. Implementations never panic and never
// return a Go error: every outcome, including collaborator failures, is
// expressed as a StepResult so the orchestrator's failure policy can act on
// it.
type Runner interface {
	Run(ctx context.Context, params map[string]any) *plan.StepResult
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, params map[string]any) *plan.StepResult

func (f RunnerFunc) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	return f(ctx, params)
}

func success(output map[string]any) *plan.StepResult {
	return &plan.StepResult{Success: true, Output: output}
}

func failure(msg string) *plan.StepResult {
	return &plan.StepResult{Success: false, Error: msg}
}

func failuref(format string, args ...any) *plan.StepResult {
	return failure(fmt.Sprintf(format, args...))
}

// stringParam extracts a required non-empty string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	raw, ok := params[key]
	if !ok {
		return "", fmt.Errorf("required param %q missing", key)
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("param %q must be a non-empty string", key)
	}
	return s, nil
}

// optionalString extracts an optional string parameter, empty if absent.
func optionalString(params map[string]any, key string) string {
	if s, ok := params[key].(string); ok {
		return s
	}
	return ""
}

// optionalBool extracts an optional boolean parameter, false if absent.
func optionalBool(params map[string]any, key string) bool {
	b, _ := params[key].(bool)
	return b
}

// stringList coerces a parameter into a string slice, tolerating the []any
// shape JSON decoding produces.
func stringList(params map[string]any, key string) []string {
	switch typed := params[key].(type) {
	case []string:
		return typed
	case []any:
		out := make([]string, 0, len(typed))
		for _, v := range typed {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// mapParam extracts an optional map parameter, nil if absent.
func mapParam(params map[string]any, key string) map[string]any {
	m, _ := params[key].(map[string]any)
	return m
}
