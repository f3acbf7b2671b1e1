package orchestrator

import (
	"github.com/eolecvk/ai-catalog-sub002/internal/graphdata"
)

// QueryResult is the data-bearing part of a FinalResult: graph data from
// query steps plus any narrative attached by analysis steps.
type QueryResult struct {
	Type               string               `json:"type,omitempty"`
	GraphData          *graphdata.GraphData `json:"graphData,omitempty"`
	CypherQuery        string               `json:"cypherQuery,omitempty"`
	ConnectionStrategy string               `json:"connectionStrategy,omitempty"`
	Analysis           string               `json:"analysis,omitempty"`
	Summary            string               `json:"summary,omitempty"`
	AutoRecovered      bool                 `json:"autoRecovered,omitempty"`
	OriginalQuery      string               `json:"originalQuery,omitempty"`
	Recovery           map[string]any       `json:"recovery,omitempty"`
}

// FinalResult is the single object handed to the presentation layer for one
// request. It is accumulated by folding step results in plan order.
type FinalResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	QueryResult *QueryResult `json:"queryResult,omitempty"`

	Suggestions []string `json:"suggestions,omitempty"`

	NeedsClarification          bool `json:"needsClarification,omitempty"`
	NeedsConfirmation           bool `json:"needsConfirmation,omitempty"`
	TerminatesClarificationLoop bool `json:"terminatesClarificationLoop,omitempty"`
}

// fold merges one successful step's output into the accumulating result.
// Query-type outputs populate graphData and query metadata. Analysis outputs
// attach onto the existing result: graph data from an earlier step is never
// discarded by a later narrative step.
func (r *FinalResult) fold(output map[string]any) {
	if output == nil {
		return
	}

	if data, ok := output["graphData"].(*graphdata.GraphData); ok {
		qr := r.ensureQueryResult()
		// Fold into a fresh accumulator. The step's own GraphData stays
		// addressable by later steps and must never absorb merged nodes.
		qr.GraphData = graphdata.New().Merge(qr.GraphData).Merge(data)
		qr.Type = "graph"
		if q, ok := output["cypherQuery"].(string); ok && q != "" {
			qr.CypherQuery = q
		}
		if s, ok := output["connectionStrategy"].(string); ok && s != "" {
			qr.ConnectionStrategy = s
		}
		if recovered, ok := output["autoRecovered"].(bool); ok && recovered {
			qr.AutoRecovered = true
			qr.OriginalQuery, _ = output["originalQuery"].(string)
			qr.Recovery, _ = output["recovery"].(map[string]any)
		}
	}

	if analysis, ok := output["analysis"].(string); ok && analysis != "" {
		qr := r.ensureQueryResult()
		qr.Analysis = analysis
		if summary, ok := output["summary"].(string); ok {
			qr.Summary = summary
		}
		if qr.Type == "" {
			qr.Type = "analysis"
		}
	}

	if message, ok := output["message"].(string); ok && message != "" {
		r.Message = message
	}
	if suggestions := asStringList(output["suggestions"]); suggestions != nil {
		r.Suggestions = suggestions
	}
	if needs, ok := output["needsClarification"].(bool); ok {
		r.NeedsClarification = needs
	}
	if needs, ok := output["needsConfirmation"].(bool); ok {
		r.NeedsConfirmation = needs
	}
	if terminates, ok := output["terminatesClarificationLoop"].(bool); ok {
		r.TerminatesClarificationLoop = terminates
	}
}

func (r *FinalResult) ensureQueryResult() *QueryResult {
	if r.QueryResult == nil {
		r.QueryResult = &QueryResult{}
	}
	return r.QueryResult
}

func asStringList(raw any) []string {
	switch typed := raw.(type) {
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
