package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// maxHistoryTurns bounds how much conversation history is embedded in the
// planner prompt. Older turns are dropped, most recent kept.
const maxHistoryTurns = 6

// Generator produces execution plans from natural-language queries using an
// LLM. Parse failures are never propagated to the caller: after one lenient
// re-parse the generator falls back to a fixed clarification plan.
type Generator struct {
	provider llm.Provider
	catalog  *schema.Catalog
	logger   *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger used for plan generation events.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a plan generator backed by the given provider and
// schema catalog.
func NewGenerator(provider llm.Provider, catalog *schema.Catalog, opts ...GeneratorOption) *Generator {
	g := &Generator{
		provider: provider,
		catalog:  catalog,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// rawPlan mirrors the JSON shape the prompt asks the LLM to produce.
type rawPlan struct {
	Steps []rawStep `json:"steps"`
}

type rawStep struct {
	TaskType  string         `json:"task_type"`
	Params    map[string]any `json:"params"`
	OnFailure string         `json:"on_failure"`
	Reasoning string         `json:"reasoning"`
}

// Generate builds an execution plan for the query. History beyond the most
// recent turns is truncated before prompting.
func (g *Generator) Generate(ctx context.Context, query string, history []ChatTurn) (*ExecutionPlan, error) {
	history = truncateHistory(history, maxHistoryTurns)

	prompt := g.buildPrompt(query, history)
	req := llm.NewCompletionRequest(
		[]llm.Message{
			llm.NewSystemMessage(plannerSystemPrompt),
			llm.NewUserMessage(prompt),
		},
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(2048),
	)

	resp, err := g.provider.Complete(ctx, req)
	if err != nil {
		return nil, types.WrapError(types.PLAN_GENERATION_FAILED, "planner completion failed", err)
	}

	raw, parseErr := g.parseResponse(resp.Message.Content)
	if parseErr != nil {
		g.logger.Warn("plan response unparseable, returning fallback clarification plan",
			"error", parseErr)
		return g.fallbackPlan(query), nil
	}

	p := &ExecutionPlan{
		ID:        types.NewID(),
		Query:     query,
		CreatedAt: time.Now().UTC(),
	}
	for _, rs := range raw.Steps {
		policy := FailurePolicy(rs.OnFailure)
		if rs.OnFailure == "" {
			policy = FailureClarifyAndHalt
		}
		p.Steps = append(p.Steps, Step{
			TaskType:  TaskType(rs.TaskType),
			Params:    rs.Params,
			OnFailure: policy,
			Reasoning: rs.Reasoning,
		})
	}

	if err := Validate(p); err != nil {
		g.logger.Warn("generated plan failed validation, returning fallback clarification plan",
			"error", err)
		return g.fallbackPlan(query), nil
	}

	g.logger.Info("execution plan generated",
		"plan_id", p.ID,
		"steps", len(p.Steps))
	return p, nil
}

// parseResponse tries the strict JSON extractor first and the lenient one on
// failure, per the bounded-retry contract for LLM-authored output.
func (g *Generator) parseResponse(content string) (*rawPlan, error) {
	text, err := llm.ExtractJSON(content)
	if err != nil {
		text, err = llm.ExtractJSONLenient(content)
		if err != nil {
			return nil, err
		}
	}
	var raw rawPlan
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, types.WrapError(types.LLM_RESPONSE_INVALID, "plan JSON malformed", err)
	}
	return &raw, nil
}

// Validate checks plan structure: non-empty step list, catalog-member task
// types, present params, non-empty reasoning, and a known failure policy.
// Violations name the offending step index and field.
func Validate(p *ExecutionPlan) error {
	if p == nil || len(p.Steps) == 0 {
		return types.NewError(types.PLAN_STRUCTURE_INVALID, "plan has no steps")
	}
	for i, step := range p.Steps {
		n := i + 1
		if !step.TaskType.IsValid() {
			return types.NewError(types.PLAN_STRUCTURE_INVALID,
				fmt.Sprintf("step %d: task_type %q is not in the task catalog", n, step.TaskType))
		}
		if step.Params == nil {
			return types.NewError(types.PLAN_STRUCTURE_INVALID,
				fmt.Sprintf("step %d: params missing", n))
		}
		if strings.TrimSpace(step.Reasoning) == "" {
			return types.NewError(types.PLAN_STRUCTURE_INVALID,
				fmt.Sprintf("step %d: reasoning must be non-empty", n))
		}
		if !step.OnFailure.IsValid() {
			return types.NewError(types.PLAN_STRUCTURE_INVALID,
				fmt.Sprintf("step %d: on_failure %q is not a known policy", n, step.OnFailure))
		}
	}
	return nil
}

// fallbackPlan is the fixed one-step plan returned when the LLM response
// cannot be salvaged: a clarification step asking the user to restate the
// request, with canned suggestions drawn from the schema catalog.
func (g *Generator) fallbackPlan(query string) *ExecutionPlan {
	return &ExecutionPlan{
		ID:       types.NewID(),
		Query:    query,
		Fallback: true,
		Steps: []Step{
			{
				TaskType: TaskClarifyWithUser,
				Params: map[string]any{
					"message":     "I had trouble understanding that request. Could you rephrase it?",
					"suggestions": g.catalog.ExampleQueries,
				},
				OnFailure: FailureClarifyAndHalt,
				Reasoning: "Planner output was unusable; ask the user to restate the request.",
			},
		},
		CreatedAt: time.Now().UTC(),
	}
}

const plannerSystemPrompt = `You are a query planner for an AI product catalog stored in a graph database. You translate user questions into a short JSON execution plan. Respond with JSON only, no prose.`

func (g *Generator) buildPrompt(query string, history []ChatTurn) string {
	var b strings.Builder

	b.WriteString("## Graph schema\n")
	b.WriteString(g.catalog.PromptDescription())
	b.WriteString("\n\n## Available tasks\n")
	for _, t := range Catalog() {
		fmt.Fprintf(&b, "- %s: %s\n", t, Describe(t))
	}

	b.WriteString("\n## Plan format\n")
	b.WriteString(`Return a JSON object: {"steps": [{"task_type": "...", "params": {...}, "on_failure": "clarify_and_halt|continue|retry", "reasoning": "..."}]}` + "\n")
	b.WriteString("A step may consume an earlier step's output by using the string \"step N output\" (optionally \"step N output.field\") as a param value.\n")
	b.WriteString("Use validate_entity with on_failure clarify_and_halt before querying an entity the user named explicitly.\n")
	b.WriteString("If the user keeps asking about an entity that does not exist, or asks what is available, plan a single clarify_with_user step with params {\"provide_final_answer\": true}.\n")

	if len(history) > 0 {
		b.WriteString("\n## Recent conversation\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Type, turn.Content)
		}
	}

	b.WriteString("\n## User query\n")
	b.WriteString(query)
	return b.String()
}

func truncateHistory(history []ChatTurn, limit int) []ChatTurn {
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
