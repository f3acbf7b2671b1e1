package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/graphdata"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm/providers"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

func bankingNode(id, name, label string) dbtype.Node {
	return dbtype.Node{
		ElementId: id,
		Labels:    []string{label},
		Props:     map[string]any{"name": name},
	}
}

func sectorRecords() []map[string]any {
	industry := bankingNode("n1", "Banking", "Industry")
	sector := bankingNode("n2", "Retail Banking", "Sector")
	rel := dbtype.Relationship{
		ElementId:      "r1",
		StartElementId: "n1",
		EndElementId:   "n2",
		Type:           "HAS_SECTOR",
	}
	return []map[string]any{{"i": industry, "r": rel, "s": sector}}
}

func newExecutor(client graph.Client, provider *providers.MockProvider) *CypherExecutor {
	return NewCypherExecutor(Deps{
		Graph:   client,
		LLM:     provider,
		Catalog: schema.Default(),
		Logger:  slog.Default(),
	})
}

func TestExecuteCypher_Success(t *testing.T) {
	mock := graph.NewMockClient().WithResult(graph.QueryResult{Records: sectorRecords()})
	e := newExecutor(mock, providers.NewMockProvider())

	result := e.Run(context.Background(), map[string]any{
		"query": "MATCH (i:Industry)-[r:HAS_SECTOR]->(s:Sector) RETURN i, r, s",
	})

	require.True(t, result.Success)
	assert.Equal(t, "graph", result.Output["type"])
	assert.Equal(t, 1, result.Output["recordCount"])

	data := result.Output["graphData"].(*graphdata.GraphData)
	assert.Equal(t, 2, data.NodeCount())
	assert.Equal(t, 1, data.EdgeCount())
	assert.Nil(t, result.Output["autoRecovered"])
}

func TestExecuteCypher_UnclassifiedErrorSurfacesOriginalQuery(t *testing.T) {
	mock := graph.NewMockClient().WithError(errors.New("something very strange"))
	provider := providers.NewMockProvider()
	e := newExecutor(mock, provider)

	result := e.Run(context.Background(), map[string]any{
		"query": "MATCH (n) RETURN n",
	})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "MATCH (n) RETURN n")
	// no recovery attempted for unclassified failures
	assert.Equal(t, 0, provider.CallCount())
	assert.Equal(t, 1, mock.QueryCount())
}

func TestExecuteCypher_RecoveryAccepted(t *testing.T) {
	mock := graph.NewMockClient().
		WithError(errors.New("Type mismatch: expected Path but was Node (line 1, column 50)")).
		WithResult(graph.QueryResult{Records: sectorRecords()})
	provider := providers.NewMockProvider(`{
		"corrected_query": "MATCH path = (i:Industry)-[:HAS_SECTOR]->(s:Sector) RETURN path",
		"rationale": "relationships() needs a path variable",
		"confidence": 0.9,
		"changes": ["bound a path variable"]
	}`)
	e := newExecutor(mock, provider)

	result := e.Run(context.Background(), map[string]any{
		"query": "MATCH (i:Industry)-[:HAS_SECTOR]->(s:Sector) RETURN s, relationships(s)",
	})

	require.True(t, result.Success)
	assert.Equal(t, true, result.Output["autoRecovered"])
	assert.Equal(t, "MATCH (i:Industry)-[:HAS_SECTOR]->(s:Sector) RETURN s, relationships(s)", result.Output["originalQuery"])
	assert.Contains(t, result.Output["cypherQuery"], "MATCH path =")

	recovery := result.Output["recovery"].(map[string]any)
	assert.Equal(t, "relationships() needs a path variable", recovery["rationale"])
	assert.Equal(t, []string{"bound a path variable"}, recovery["changes"])
	assert.Equal(t, "path_function_type_mismatch", recovery["errorClass"])
	assert.Equal(t, 2, mock.QueryCount())
}

func TestExecuteCypher_RecoveryRejectedOnLowConfidence(t *testing.T) {
	mock := graph.NewMockClient().
		WithError(errors.New("Type mismatch: expected Path but was Node"))
	provider := providers.NewMockProvider(`{"corrected_query": "MATCH (n) RETURN n", "confidence": 0.4}`)
	e := newExecutor(mock, provider)

	result := e.Run(context.Background(), map[string]any{"query": "MATCH (n) RETURN n, relationships(n)"})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "relationships(n)")
	// the corrected query was never run
	assert.Equal(t, 1, mock.QueryCount())
}

func TestExecuteCypher_RecoveryRetryFailureSurfaces(t *testing.T) {
	mock := graph.NewMockClient().
		WithError(errors.New("SyntaxError: Invalid input 'FROM'")).
		WithError(errors.New("SyntaxError: still broken"))
	provider := providers.NewMockProvider(`{"corrected_query": "MATCH (n) RETURN n LIMIT 1", "confidence": 0.95}`)
	e := newExecutor(mock, provider)

	result := e.Run(context.Background(), map[string]any{"query": "SELECT * FROM nodes"})

	require.False(t, result.Success)
	assert.Contains(t, result.Error, "SELECT * FROM nodes")
	assert.Equal(t, 2, mock.QueryCount())
}

func TestExecuteCypher_RecoveryUnparseableResponse(t *testing.T) {
	mock := graph.NewMockClient().
		WithError(errors.New("Type mismatch: expected Path but was Node"))
	provider := providers.NewMockProvider("I think the query looks fine actually.")
	e := newExecutor(mock, provider)

	result := e.Run(context.Background(), map[string]any{"query": "MATCH (n) RETURN n"})

	require.False(t, result.Success)
	assert.Equal(t, 1, mock.QueryCount())
}

func TestExecuteCypher_MissingQueryParam(t *testing.T) {
	e := newExecutor(graph.NewMockClient(), providers.NewMockProvider())

	result := e.Run(context.Background(), map[string]any{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "query")
}

func TestClassifyExecutionError(t *testing.T) {
	tests := []struct {
		name      string
		err       string
		wantClass string
		wantOK    bool
	}{
		{
			name:      "path type mismatch",
			err:       "Type mismatch: expected Path but was Node (line 1, column 57)",
			wantClass: "path_function_type_mismatch",
			wantOK:    true,
		},
		{
			name:      "path function input",
			err:       "Invalid input for function 'relationships': expected a path",
			wantClass: "path_function_type_mismatch",
			wantOK:    true,
		},
		{
			name:      "syntax error",
			err:       "SyntaxError: Invalid input ')': expected an expression",
			wantClass: "syntax_error",
			wantOK:    true,
		},
		{
			name:      "undefined variable",
			err:       "Variable `foo` not defined (line 1, column 30)",
			wantClass: "unknown_identifier",
			wantOK:    true,
		},
		{
			name:   "unclassified",
			err:    "connection reset by peer",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, ok := classifyExecutionError(errors.New(tt.err))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantClass, class)
		})
	}
}
