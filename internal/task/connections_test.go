package task

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/graphdata"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

func newFinder(client graph.Client) *ConnectionFinder {
	return NewConnectionFinder(Deps{
		Graph:   client,
		Catalog: schema.Default(),
		Logger:  slog.Default(),
	})
}

func TestFindConnectionPaths_DirectAndShared(t *testing.T) {
	mock := graph.NewMockClient().
		WithResult(graph.QueryResult{Records: sectorRecords()}).
		WithResult(graph.QueryResult{Records: sectorRecords()})
	f := newFinder(mock)

	result := f.Run(context.Background(), map[string]any{
		"from_type": "Industry",
		"to_type":   "Sector",
	})

	require.True(t, result.Success)
	assert.Equal(t, "direct_and_shared", result.Output["connectionStrategy"])
	assert.Equal(t, 1, result.Output["directCount"])
	assert.Equal(t, 1, result.Output["sharedCount"])

	// both reads happened, each bounded by the result cap
	calls := mock.Calls()
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Contains(t, call.Cypher, "LIMIT $cap")
		assert.Equal(t, connectionResultCap, call.Params["cap"])
	}
	assert.Contains(t, calls[1].Cypher, "-[r2]-")

	// identical records across the two reads deduplicate by id
	data := result.Output["graphData"].(*graphdata.GraphData)
	assert.Equal(t, 2, data.NodeCount())
	assert.Equal(t, 1, data.EdgeCount())
}

func TestFindConnectionPaths_NoConnections(t *testing.T) {
	mock := graph.NewMockClient().
		WithResult(graph.QueryResult{}).
		WithResult(graph.QueryResult{})
	f := newFinder(mock)

	result := f.Run(context.Background(), map[string]any{
		"from_type": "Industry",
		"to_type":   "AIApplication",
	})

	require.True(t, result.Success)
	assert.Equal(t, "none", result.Output["connectionStrategy"])
	data := result.Output["graphData"].(*graphdata.GraphData)
	assert.True(t, data.IsEmpty())
}

func TestFindConnectionPaths_RejectsUnknownLabel(t *testing.T) {
	mock := graph.NewMockClient()
	f := newFinder(mock)

	result := f.Run(context.Background(), map[string]any{
		"from_type": "Industry",
		"to_type":   "DROP DATABASE",
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not a schema label")
	assert.Equal(t, 0, mock.QueryCount())
}

func TestFindConnectionPaths_QueryFailure(t *testing.T) {
	mock := graph.NewMockClient().WithError(errors.New("connection reset"))
	f := newFinder(mock)

	result := f.Run(context.Background(), map[string]any{
		"from_type": "Industry",
		"to_type":   "Sector",
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "direct connection query")
}

func TestConnectionStrategy(t *testing.T) {
	assert.Equal(t, "direct", connectionStrategy(3, 0))
	assert.Equal(t, "shared_intermediate", connectionStrategy(0, 2))
	assert.Equal(t, "direct_and_shared", connectionStrategy(1, 1))
	assert.Equal(t, "none", connectionStrategy(0, 0))
}

func TestFindConnectionPaths_SharedQueryExcludesEndpointLabels(t *testing.T) {
	mock := graph.NewMockClient().
		WithResult(graph.QueryResult{}).
		WithResult(graph.QueryResult{})
	f := newFinder(mock)

	f.Run(context.Background(), map[string]any{
		"from_type": "Department",
		"to_type":   "AIApplication",
	})

	calls := mock.Calls()
	require.Len(t, calls, 2)
	shared := calls[1].Cypher
	assert.True(t, strings.Contains(shared, "NOT x:Department"))
	assert.True(t, strings.Contains(shared, "NOT x:AIApplication"))
}
