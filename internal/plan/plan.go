// Package plan defines the execution plan model and the LLM-driven plan
// generator. A plan is an ordered sequence of task invocations with parameter
// bindings, per-step failure policies, and a recorded rationale; it is
// produced once per user query and consumed exactly once by the orchestrator.
package plan

import (
	"time"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// TaskType identifies one entry of the static task catalog.
type TaskType string

const (
	TaskValidateEntity       TaskType = "validate_entity"
	TaskFindConnectionPaths  TaskType = "find_connection_paths"
	TaskGenerateCypher       TaskType = "generate_cypher"
	TaskExecuteCypher        TaskType = "execute_cypher"
	TaskAnalyzeAndSummarize  TaskType = "analyze_and_summarize"
	TaskGenerateCreativeText TaskType = "generate_creative_text"
	TaskClarifyWithUser      TaskType = "clarify_with_user"
)

// String returns the string representation of the task type.
func (t TaskType) String() string {
	return string(t)
}

// IsValid checks membership in the static task catalog.
func (t TaskType) IsValid() bool {
	_, ok := taskCatalog[t]
	return ok
}

// taskCatalog maps every task type to its one-line semantics, used both for
// plan validation and for the planner prompt.
var taskCatalog = map[TaskType]string{
	TaskValidateEntity:       "Check whether an entity name exists in the schema or the live graph data, with fuzzy suggestions on miss.",
	TaskFindConnectionPaths:  "Find direct and shared-intermediate connections between two schema label types.",
	TaskGenerateCypher:       "Translate a natural-language goal (plus optional entities and context) into a Cypher query.",
	TaskExecuteCypher:        "Run a Cypher query against the graph and return canonical node/edge data.",
	TaskAnalyzeAndSummarize:  "Produce a narrative analysis or comparison of one or two query result sets.",
	TaskGenerateCreativeText: "Produce suggestion or brainstorm text grounded in a query result set.",
	TaskClarifyWithUser:      "Ask the user a disambiguating question, or deliver a terminal catalog answer.",
}

// Catalog returns the task types in stable order.
func Catalog() []TaskType {
	return []TaskType{
		TaskValidateEntity,
		TaskFindConnectionPaths,
		TaskGenerateCypher,
		TaskExecuteCypher,
		TaskAnalyzeAndSummarize,
		TaskGenerateCreativeText,
		TaskClarifyWithUser,
	}
}

// Describe returns the one-line semantics for a task type.
func Describe(t TaskType) string {
	return taskCatalog[t]
}

// FailurePolicy governs what the orchestrator does when a step fails.
type FailurePolicy string

const (
	// FailureClarifyAndHalt stops execution immediately; the final result
	// becomes the halting clarification message.
	FailureClarifyAndHalt FailurePolicy = "clarify_and_halt"

	// FailureContinue records the failure and proceeds to the next step.
	FailureContinue FailurePolicy = "continue"

	// FailureRetry re-invokes the step once with identical parameters,
	// then falls back to continue semantics.
	FailureRetry FailurePolicy = "retry"
)

// IsValid checks if the policy is a known value.
func (p FailurePolicy) IsValid() bool {
	switch p {
	case FailureClarifyAndHalt, FailureContinue, FailureRetry:
		return true
	default:
		return false
	}
}

// Step is one task invocation within a plan. Steps are immutable once the
// plan is generated; results are stored externally in the orchestrator's
// execution state, never on the step.
type Step struct {
	// TaskType names the task catalog entry to invoke.
	TaskType TaskType `json:"task_type"`

	// Params holds the task parameters. Values are literals or textual
	// step references of the form "step N output" with an optional
	// ".field.path" suffix (see ParseValue).
	Params map[string]any `json:"params"`

	// OnFailure is the failure policy applied when the task reports failure.
	OnFailure FailurePolicy `json:"on_failure"`

	// Reasoning records planner intent. Required non-empty for
	// auditability even though execution never reads it.
	Reasoning string `json:"reasoning"`
}

// ExecutionPlan is an ordered sequence of steps for one user query.
type ExecutionPlan struct {
	ID        types.ID  `json:"id"`
	Query     string    `json:"query"`
	Steps     []Step    `json:"steps"`
	Fallback  bool      `json:"fallback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StepResult is the outcome of executing exactly one step, stored keyed by
// 1-based step index in the orchestrator's run-scoped execution state.
type StepResult struct {
	Success bool           `json:"success"`
	Output  map[string]any `json:"output,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ExecutionState maps 1-based step index to that step's result. It is
// created fresh per plan run, exclusively owned by one orchestrator
// invocation, and discarded when the run completes.
type ExecutionState map[int]*StepResult

// ChatTurn is one entry of the short conversation history given to the
// planner.
type ChatTurn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}
