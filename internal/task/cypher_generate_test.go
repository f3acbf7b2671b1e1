package task

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm/providers"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

const synthesisResponse = `{
  "query": "MATCH (i:Industry {name: 'Banking'})-[r:HAS_SECTOR]->(s:Sector) RETURN i, r, s",
  "params": {},
  "explanation": "Lists every sector under the Banking industry.",
  "connection_strategy": "direct"
}`

// review pass reports no change
const noChangeReview = `{"corrected_query": "", "corrections": [], "changed": false}`

func newGenerator(provider *providers.MockProvider) *CypherGenerator {
	return NewCypherGenerator(Deps{
		LLM:     provider,
		Catalog: schema.Default(),
		Logger:  slog.Default(),
	})
}

func TestGenerateCypher_Plain(t *testing.T) {
	provider := providers.NewMockProvider(synthesisResponse, noChangeReview)
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{
		"goal": "list sectors under Banking industry",
	})

	require.True(t, result.Success)
	assert.Contains(t, result.Output["query"], "HAS_SECTOR")
	assert.Equal(t, "direct", result.Output["connectionStrategy"])
	assert.Equal(t, "plain", result.Output["mode"])
	assert.NotEmpty(t, result.Output["explanation"])
}

func TestGenerateCypher_RepairsDoubleQuotedLiterals(t *testing.T) {
	provider := providers.NewMockProvider(
		`{"query": "MATCH (i:Industry {name: \"Banking\"})-[r:HAS_SECTOR]->(s:Sector) RETURN i, r, s", "params": {}, "explanation": "x", "connection_strategy": "direct"}`,
		noChangeReview,
	)
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{"goal": "list Banking sectors"})

	require.True(t, result.Success)
	assert.Contains(t, result.Output["query"], "'Banking'")
	assert.NotContains(t, result.Output["query"], `"Banking"`)
	assert.NotEmpty(t, result.Output["repairs"])
}

func TestGenerateCypher_ModeSelection(t *testing.T) {
	tests := []struct {
		name       string
		params     map[string]any
		wantMode   string
		wantPrompt string
	}{
		{
			name:       "proxy entity",
			params:     map[string]any{"goal": "g", "proxy_company": "Acme Corp"},
			wantMode:   "proxy_entity",
			wantPrompt: "Acme Corp",
		},
		{
			name:       "exclusion",
			params:     map[string]any{"goal": "g", "exclusion": true},
			wantMode:   "exclusion",
			wantPrompt: "non-existence",
		},
		{
			name:       "analytics exclusion",
			params:     map[string]any{"goal": "g", "analytics": "exclusion"},
			wantMode:   "exclusion",
			wantPrompt: "non-existence",
		},
		{
			name:       "analytics inclusion",
			params:     map[string]any{"goal": "g", "analytics": "inclusion"},
			wantMode:   "exclusion",
			wantPrompt: "existence",
		},
		{
			name:       "comparison",
			params:     map[string]any{"goal": "g", "comparison": true},
			wantMode:   "comparison",
			wantPrompt: "compared side by side",
		},
		{
			name:       "multi level",
			params:     map[string]any{"goal": "g", "multi_level": true},
			wantMode:   "multi_level",
			wantPrompt: "UNION",
		},
		{
			name:       "explicit mode wins",
			params:     map[string]any{"goal": "g", "mode": "comparison", "exclusion": true},
			wantMode:   "comparison",
			wantPrompt: "compared side by side",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := providers.NewMockProvider(synthesisResponse, noChangeReview)
			g := newGenerator(provider)

			result := g.Run(context.Background(), tt.params)

			require.True(t, result.Success)
			assert.Equal(t, tt.wantMode, result.Output["mode"])
			prompt := provider.Requests()[0].Messages[1].Content
			assert.Contains(t, prompt, tt.wantPrompt)
		})
	}
}

func TestGenerateCypher_PromptCarriesEntitiesAndContext(t *testing.T) {
	provider := providers.NewMockProvider(synthesisResponse, noChangeReview)
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{
		"goal":     "compare pain points",
		"entities": []any{"Retail Banking", "Health Insurance"},
		"context":  "user already saw the sector list",
	})

	require.True(t, result.Success)
	prompt := provider.Requests()[0].Messages[1].Content
	assert.Contains(t, prompt, "Retail Banking, Health Insurance")
	assert.Contains(t, prompt, "user already saw the sector list")
}

func TestGenerateCypher_ReviewCorrectionApplied(t *testing.T) {
	provider := providers.NewMockProvider(
		synthesisResponse,
		`{"corrected_query": "MATCH (i:Industry {name: 'Banking'})-[r:HAS_SECTOR]->(s:Sector) RETURN i, r, s LIMIT 50", "corrections": ["added result cap"], "changed": true}`,
	)
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{"goal": "list Banking sectors"})

	require.True(t, result.Success)
	assert.Contains(t, result.Output["query"], "LIMIT 50")
	assert.Equal(t, []string{"added result cap"}, result.Output["reviewCorrections"])
}

func TestGenerateCypher_EmptyQueryFails(t *testing.T) {
	provider := providers.NewMockProvider(`{"query": "", "params": {}, "explanation": "", "connection_strategy": ""}`)
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{"goal": "anything"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "empty query")
}

func TestGenerateCypher_UnparseableResponseFails(t *testing.T) {
	provider := providers.NewMockProvider("I would write a MATCH query here.")
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{"goal": "anything"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unusable output")
}

func TestGenerateCypher_ProviderErrorFails(t *testing.T) {
	provider := providers.NewMockProvider().FailWith(errors.New("rate limited"))
	g := newGenerator(provider)

	result := g.Run(context.Background(), map[string]any{"goal": "anything"})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "synthesis failed")
}

func TestGenerateCypher_MissingGoal(t *testing.T) {
	g := newGenerator(providers.NewMockProvider())

	result := g.Run(context.Background(), map[string]any{})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "goal")
}
