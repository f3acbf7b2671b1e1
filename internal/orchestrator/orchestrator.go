// Package orchestrator interprets execution plans: it walks the steps in
// order, resolves references between them, dispatches to the task library,
// applies each step's failure policy, and folds the step outputs into one
// FinalResult per request.
package orchestrator

import (
	"context"
	"log/slog"

	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/task"
)

// genericFailureMessage is what the user sees when a halting failure carries
// no clarification message of its own.
const genericFailureMessage = "Something went wrong while answering that. Please try again."

// Orchestrator executes plans. It holds no state between runs; a fresh
// ExecutionState is created per Execute call, so one instance is safe for
// concurrent requests.
type Orchestrator struct {
	registry *task.Registry
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for step lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator dispatching into the given task registry.
func New(registry *task.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs the plan strictly in step order. Later steps may reference
// earlier outputs, so there is no reordering and no parallelism within one
// plan.
func (o *Orchestrator) Execute(ctx context.Context, p *plan.ExecutionPlan) (*FinalResult, error) {
	if err := plan.Validate(p); err != nil {
		return nil, err
	}

	state := make(plan.ExecutionState, len(p.Steps))
	final := &FinalResult{Success: true}

	for i, step := range p.Steps {
		n := i + 1
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := o.runStep(ctx, n, step, state)

		if result.Success {
			state[n] = result
			final.fold(result.Output)
			continue
		}

		switch step.OnFailure {
		case plan.FailureRetry:
			o.logger.Info("step failed, retrying once",
				"plan_id", p.ID, "step", n, "task", step.TaskType)
			retried := o.runStep(ctx, n, step, state)
			if retried.Success {
				state[n] = retried
				final.fold(retried.Output)
				continue
			}
			// after the single retry, continue semantics apply
			state[n] = retried
			o.logger.Warn("step failed after retry, continuing",
				"plan_id", p.ID, "step", n, "task", step.TaskType, "error", retried.Error)

		case plan.FailureContinue:
			state[n] = result
			o.logger.Warn("step failed, continuing",
				"plan_id", p.ID, "step", n, "task", step.TaskType, "error", result.Error)

		default: // clarify_and_halt
			o.logger.Warn("step failed, halting",
				"plan_id", p.ID, "step", n, "task", step.TaskType, "error", result.Error)
			return o.halt(step, result), nil
		}
	}

	return final, nil
}

// runStep resolves the step's parameter references and dispatches it. A
// resolution failure is treated exactly like a task-level failure.
func (o *Orchestrator) runStep(ctx context.Context, n int, step plan.Step, state plan.ExecutionState) *plan.StepResult {
	params, err := plan.ResolveParams(step.Params, state)
	if err != nil {
		return &plan.StepResult{Success: false, Error: err.Error()}
	}

	o.logger.Debug("executing step", "step", n, "task", step.TaskType)
	result, err := o.registry.Dispatch(ctx, step.TaskType, params)
	if err != nil {
		return &plan.StepResult{Success: false, Error: err.Error()}
	}
	return result
}

// halt turns a clarify_and_halt failure into the user-facing result. The
// failed step's output supplies the clarification message and suggestions
// when it has them; otherwise a generic message is used.
func (o *Orchestrator) halt(step plan.Step, result *plan.StepResult) *FinalResult {
	final := &FinalResult{
		Success:            false,
		Error:              result.Error,
		Message:            genericFailureMessage,
		NeedsClarification: true,
	}

	if result.Output != nil {
		if msg, ok := result.Output["message"].(string); ok && msg != "" {
			final.Message = msg
		}
		if suggestions := asStringList(result.Output["suggested_entities"]); len(suggestions) > 0 {
			final.Suggestions = suggestions
			if final.Message == genericFailureMessage {
				final.Message = "I couldn't find what you asked about. Did you mean one of these?"
			}
		}
		if suggestions := asStringList(result.Output["suggestions"]); len(suggestions) > 0 {
			final.Suggestions = suggestions
		}
	}

	return final
}
