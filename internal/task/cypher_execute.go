package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/graphdata"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// recoveryConfidenceThreshold gates automated query correction: a proposed
// fix is only retried when the LLM's self-reported confidence exceeds it.
const recoveryConfidenceThreshold = 0.7

// errorSignature classifies a database error message into a recoverable
// defect class.
type errorSignature struct {
	class    string
	patterns []string
}

// Classified signatures, checked in order. The path/entity type mismatch is
// by far the most common defect class in generated queries.
var errorSignatures = []errorSignature{
	{
		class: "path_function_type_mismatch",
		patterns: []string{
			"expected path",
			"expected a path",
			"was expected to be of type path",
			"invalid input for function 'relationships'",
			"invalid input for function 'nodes'",
			"type mismatch: expected path",
		},
	},
	{
		class: "syntax_error",
		patterns: []string{
			"syntaxerror",
			"invalid input '",
		},
	},
	{
		class: "unknown_identifier",
		patterns: []string{
			"variable `",
			"not defined",
		},
	},
}

// CypherExecutor runs a Cypher query and canonicalizes the result into
// GraphData. Classified execution failures get one automated LLM recovery
// attempt before surfacing.
type CypherExecutor struct {
	graph   graph.Client
	llm     llm.Provider
	catalog *schema.Catalog
	logger  *slog.Logger
}

func NewCypherExecutor(deps Deps) *CypherExecutor {
	return &CypherExecutor{
		graph:   deps.Graph,
		llm:     deps.LLM,
		catalog: deps.Catalog,
		logger:  deps.Logger,
	}
}

func (e *CypherExecutor) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	query, err := stringParam(params, "query")
	if err != nil {
		return failure(err.Error())
	}
	queryParams := mapParam(params, "queryParams")

	result, execErr := e.graph.Query(ctx, query, queryParams)
	if execErr == nil {
		return success(e.buildOutput(query, result))
	}

	class, classified := classifyExecutionError(execErr)
	if !classified {
		return failuref("query execution failed: %v (query: %s)", execErr, query)
	}

	e.logger.Info("classified query failure, attempting recovery",
		"class", class,
		"error", execErr)

	recovered := e.recover(ctx, query, queryParams, execErr, class)
	if recovered == nil {
		return failuref("query execution failed: %v (query: %s)", execErr, query)
	}
	return recovered
}

func (e *CypherExecutor) buildOutput(query string, result graph.QueryResult) map[string]any {
	data := graphdata.FromRecords(result.Records)
	output := map[string]any{
		"type":        "graph",
		"cypherQuery": query,
		"graphData":   data,
		"recordCount": len(result.Records),
	}
	return output
}

// correction mirrors the JSON shape the recovery prompt requests.
type correction struct {
	CorrectedQuery string   `json:"corrected_query"`
	Rationale      string   `json:"rationale"`
	Confidence     float64  `json:"confidence"`
	Changes        []string `json:"changes"`
}

// recover asks the LLM to diagnose the failure and propose a corrected
// query, retries it when confidence clears the threshold, and annotates a
// successful retry as auto-recovered. Returns nil when recovery was rejected
// or itself failed.
func (e *CypherExecutor) recover(ctx context.Context, query string, queryParams map[string]any, execErr error, class string) *plan.StepResult {
	prompt := e.buildRecoveryPrompt(query, execErr, class)
	req := llm.NewCompletionRequest(
		[]llm.Message{llm.NewUserMessage(prompt)},
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(1024),
	)

	resp, err := e.llm.Complete(ctx, req)
	if err != nil {
		e.logger.Warn("recovery completion failed", "error", err)
		return nil
	}

	fix, parseErr := parseCorrection(resp.Message.Content)
	if parseErr != nil {
		e.logger.Warn("recovery response unparseable", "error", parseErr)
		return nil
	}
	if fix.Confidence <= recoveryConfidenceThreshold {
		e.logger.Info("recovery rejected, confidence too low",
			"confidence", fix.Confidence)
		return nil
	}
	if strings.TrimSpace(fix.CorrectedQuery) == "" || fix.CorrectedQuery == query {
		return nil
	}

	result, retryErr := e.graph.Query(ctx, fix.CorrectedQuery, queryParams)
	if retryErr != nil {
		e.logger.Warn("corrected query also failed", "error", retryErr)
		return nil
	}

	e.logger.Info("query auto-recovered",
		"class", class,
		"confidence", fix.Confidence)

	output := e.buildOutput(fix.CorrectedQuery, result)
	output["autoRecovered"] = true
	output["originalQuery"] = query
	output["recovery"] = map[string]any{
		"rationale":  fix.Rationale,
		"changes":    fix.Changes,
		"confidence": fix.Confidence,
		"errorClass": class,
	}
	return success(output)
}

func parseCorrection(content string) (*correction, error) {
	text, err := llm.ExtractJSON(content)
	if err != nil {
		text, err = llm.ExtractJSONLenient(content)
		if err != nil {
			return nil, err
		}
	}
	var fix correction
	if err := json.Unmarshal([]byte(text), &fix); err != nil {
		return nil, err
	}
	return &fix, nil
}

func (e *CypherExecutor) buildRecoveryPrompt(query string, execErr error, class string) string {
	var b strings.Builder
	b.WriteString("A Cypher query against the graph below failed. Diagnose the error and propose a corrected query.\n\n")
	b.WriteString("## Graph schema\n")
	b.WriteString(e.catalog.PromptDescription())
	fmt.Fprintf(&b, "\n\n## Failed query\n%s\n", query)
	fmt.Fprintf(&b, "\n## Error (%s)\n%s\n", class, execErr.Error())
	b.WriteString("\nRespond with JSON only: {\"corrected_query\": \"...\", \"rationale\": \"...\", \"confidence\": 0.0, \"changes\": [\"...\"]}. ")
	b.WriteString("Set confidence to your honest probability that the corrected query runs and answers the original intent.")
	return b.String()
}

// classifyExecutionError matches the error text against the fixed signature
// set. Unclassified errors get no recovery attempt.
func classifyExecutionError(err error) (string, bool) {
	msg := strings.ToLower(err.Error())
	for _, sig := range errorSignatures {
		for _, pattern := range sig.patterns {
			if strings.Contains(msg, pattern) {
				return sig.class, true
			}
		}
	}
	return "", false
}
