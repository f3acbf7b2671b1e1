package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm/providers"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

func TestEngineAsk_EndToEnd(t *testing.T) {
	planResponse := `{
	  "steps": [
	    {
	      "task_type": "generate_cypher",
	      "params": {"goal": "list sectors under Banking industry"},
	      "on_failure": "clarify_and_halt",
	      "reasoning": "need a query"
	    },
	    {
	      "task_type": "execute_cypher",
	      "params": {"query": "step 1 output.query"},
	      "on_failure": "clarify_and_halt",
	      "reasoning": "run it"
	    }
	  ]
	}`
	synthesisResponse := `{"query": "MATCH (i:Industry {name: 'Banking'})-[r:HAS_SECTOR]->(s:Sector) RETURN i, r, s", "params": {}, "explanation": "x", "connection_strategy": "direct"}`
	reviewResponse := `{"corrected_query": "", "corrections": [], "changed": false}`

	provider := providers.NewMockProvider(planResponse, synthesisResponse, reviewResponse)
	client := graph.NewMockClient().WithResult(graph.QueryResult{Records: bankingRecords()})

	engine := NewEngine(provider, client, schema.Default(), nil)
	result, err := engine.Ask(context.Background(), "Show me all Banking sectors", nil)
	require.NoError(t, err)

	require.True(t, result.Success)
	require.NotNil(t, result.QueryResult)
	require.NotNil(t, result.QueryResult.GraphData)

	foundBanking := false
	for _, n := range result.QueryResult.GraphData.Nodes {
		if n.Group == "Industry" && n.Label == "Banking" {
			foundBanking = true
		}
	}
	assert.True(t, foundBanking)
	assert.Equal(t, 3, provider.CallCount())
}

func TestEngineAsk_UnparseablePlanYieldsClarification(t *testing.T) {
	provider := providers.NewMockProvider("no JSON here at all")
	client := graph.NewMockClient()

	engine := NewEngine(provider, client, schema.Default(), nil)
	result, err := engine.Ask(context.Background(), "???", nil)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.True(t, result.NeedsClarification)
	assert.NotEmpty(t, result.Message)
	assert.NotEmpty(t, result.Suggestions)
}

func TestEngineAsk_HistoryIsForwarded(t *testing.T) {
	provider := providers.NewMockProvider(`{"steps": [{"task_type": "clarify_with_user", "params": {}, "on_failure": "continue", "reasoning": "ask"}]}`)
	engine := NewEngine(provider, graph.NewMockClient(), schema.Default(), nil)

	history := []plan.ChatTurn{{Type: "user", Content: "earlier question about claims"}}
	_, err := engine.Ask(context.Background(), "and now?", history)
	require.NoError(t, err)

	prompt := provider.Requests()[0].Messages[1].Content
	assert.Contains(t, prompt, "earlier question about claims")
}
