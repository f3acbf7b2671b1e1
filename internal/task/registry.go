package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// Registry maps task types to their runners. It is built once at engine
// construction and read-only afterwards, safe to share across concurrent
// requests.
type Registry struct {
	runners map[plan.TaskType]Runner
	logger  *slog.Logger
}

// NewRegistry wires the full task catalog against the given collaborators.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{
		logger: deps.Logger,
		runners: map[plan.TaskType]Runner{
			plan.TaskValidateEntity:       NewEntityValidator(deps),
			plan.TaskFindConnectionPaths:  NewConnectionFinder(deps),
			plan.TaskGenerateCypher:       NewCypherGenerator(deps),
			plan.TaskExecuteCypher:        NewCypherExecutor(deps),
			plan.TaskAnalyzeAndSummarize:  NewAnalyzer(deps),
			plan.TaskGenerateCreativeText: NewCreativeWriter(deps),
			plan.TaskClarifyWithUser:      NewClarifier(deps),
		},
	}
}

// Dispatch runs the named task with the given resolved parameters. The only
// hard error is an unknown task type, which validated plans cannot produce.
func (r *Registry) Dispatch(ctx context.Context, taskType plan.TaskType, params map[string]any) (*plan.StepResult, error) {
	runner, ok := r.runners[taskType]
	if !ok {
		return nil, types.NewError(types.PLAN_UNKNOWN_TASK,
			fmt.Sprintf("task %q is not in the catalog", taskType))
	}

	r.logger.Debug("dispatching task", "task", taskType)
	result := runner.Run(ctx, params)
	if result == nil {
		result = failure(fmt.Sprintf("task %q returned no result", taskType))
	}

	r.logger.Debug("task completed",
		"task", taskType,
		"success", result.Success)
	return result, nil
}
