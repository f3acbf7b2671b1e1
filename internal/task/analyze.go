package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/graphdata"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// Analyzer turns one or two query result sets into a narrative analysis and
// a short summary. It never touches the database; its input is the output of
// earlier steps, passed by reference.
type Analyzer struct {
	llm     llm.Provider
	catalog *schema.Catalog
	logger  *slog.Logger
}

func NewAnalyzer(deps Deps) *Analyzer {
	return &Analyzer{
		llm:     deps.LLM,
		catalog: deps.Catalog,
		logger:  deps.Logger,
	}
}

// narrative mirrors the JSON shape the analysis prompt requests.
type narrative struct {
	Analysis string `json:"analysis"`
	Summary  string `json:"summary"`
}

func (a *Analyzer) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	goal := optionalString(params, "goal")
	if goal == "" {
		goal = "Summarize what the result set shows."
	}

	primary, ok := params["data"]
	if !ok {
		return failure(`required param "data" missing`)
	}
	secondary := params["data_b"]

	var b strings.Builder
	b.WriteString("Analyze the graph query results below and answer the goal.\n\n")
	fmt.Fprintf(&b, "## Goal\n%s\n\n## Results\n%s\n", goal, describeData(primary))
	if secondary != nil {
		fmt.Fprintf(&b, "\n## Comparison results\n%s\n", describeData(secondary))
		b.WriteString("\nCompare the two result sets, calling out concrete differences.\n")
	}
	b.WriteString("\nRespond with JSON only: {\"analysis\": \"...\", \"summary\": \"...\"}. The summary is one or two sentences.")

	req := llm.NewCompletionRequest(
		[]llm.Message{llm.NewUserMessage(b.String())},
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(1024),
	)
	resp, err := a.llm.Complete(ctx, req)
	if err != nil {
		return failuref("analysis failed: %v", err)
	}

	n := parseNarrative(resp.Message.Content)
	return success(map[string]any{
		"type":     "analysis",
		"analysis": n.Analysis,
		"summary":  n.Summary,
	})
}

// CreativeWriter produces suggestion or brainstorm text grounded in a query
// result set. Same contract as the Analyzer but with a looser prompt and a
// warmer temperature.
type CreativeWriter struct {
	llm     llm.Provider
	catalog *schema.Catalog
	logger  *slog.Logger
}

func NewCreativeWriter(deps Deps) *CreativeWriter {
	return &CreativeWriter{
		llm:     deps.LLM,
		catalog: deps.Catalog,
		logger:  deps.Logger,
	}
}

func (w *CreativeWriter) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	goal, err := stringParam(params, "goal")
	if err != nil {
		return failure(err.Error())
	}

	var b strings.Builder
	b.WriteString("You are brainstorming on top of an AI product catalog. Ground every suggestion in the data given; do not invent entities.\n\n")
	fmt.Fprintf(&b, "## Goal\n%s\n", goal)
	if data, ok := params["data"]; ok {
		fmt.Fprintf(&b, "\n## Data\n%s\n", describeData(data))
	}
	b.WriteString("\nRespond with JSON only: {\"analysis\": \"...\", \"summary\": \"...\"}.")

	req := llm.NewCompletionRequest(
		[]llm.Message{llm.NewUserMessage(b.String())},
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(1024),
	)
	resp, err := w.llm.Complete(ctx, req)
	if err != nil {
		return failuref("creative generation failed: %v", err)
	}

	n := parseNarrative(resp.Message.Content)
	return success(map[string]any{
		"type":     "analysis",
		"analysis": n.Analysis,
		"summary":  n.Summary,
		"creative": true,
	})
}

// parseNarrative is deliberately forgiving: a response that is not the
// requested JSON shape is still useful prose, so the raw text becomes the
// analysis and a clipped version the summary.
func parseNarrative(content string) narrative {
	if text, err := llm.ExtractJSON(content); err == nil {
		var n narrative
		if json.Unmarshal([]byte(text), &n) == nil && n.Analysis != "" {
			if n.Summary == "" {
				n.Summary = clip(n.Analysis, 200)
			}
			return n
		}
	}
	trimmed := strings.TrimSpace(content)
	return narrative{Analysis: trimmed, Summary: clip(trimmed, 200)}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// describeData renders an earlier step's output compactly for a prompt.
// GraphData values are itemized as node and edge listings; anything else is
// serialized as JSON.
func describeData(data any) string {
	switch v := data.(type) {
	case *graphdata.GraphData:
		return describeGraph(v)
	case map[string]any:
		if g, ok := v["graphData"].(*graphdata.GraphData); ok {
			return describeGraph(g)
		}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(encoded)
}

func describeGraph(g *graphdata.GraphData) string {
	if g == nil || g.IsEmpty() {
		return "(empty result set)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes, %d edges\n", g.NodeCount(), g.EdgeCount())
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "- node %s (%s)\n", n.Label, n.Group)
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&b, "- edge %s -[%s]-> %s\n", e.From, e.Label, e.To)
	}
	return b.String()
}
