package orchestrator

import (
	"context"
	"log/slog"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
	"github.com/eolecvk/ai-catalog-sub002/internal/task"
)

// Engine ties the plan generator and the orchestrator together behind one
// call: natural-language query in, FinalResult out.
type Engine struct {
	generator    *plan.Generator
	orchestrator *Orchestrator
	logger       *slog.Logger
}

// NewEngine wires the engine from its collaborators. The catalog is shared,
// read-only configuration across every component.
func NewEngine(provider llm.Provider, client graph.Client, catalog *schema.Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	registry := task.NewRegistry(task.Deps{
		Graph:   client,
		LLM:     provider,
		Catalog: catalog,
		Logger:  logger,
	})
	return &Engine{
		generator:    plan.NewGenerator(provider, catalog, plan.WithGeneratorLogger(logger)),
		orchestrator: New(registry, WithLogger(logger)),
		logger:       logger,
	}
}

// Ask plans and executes one user query.
func (e *Engine) Ask(ctx context.Context, query string, history []plan.ChatTurn) (*FinalResult, error) {
	p, err := e.generator.Generate(ctx, query, history)
	if err != nil {
		return nil, err
	}

	e.logger.Info("executing plan",
		"plan_id", p.ID,
		"steps", len(p.Steps),
		"fallback", p.Fallback)

	return e.orchestrator.Execute(ctx, p)
}
