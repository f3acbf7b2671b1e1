package cypher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm/providers"
)

func TestRepair_QuotingConvention(t *testing.T) {
	v := NewValidator()

	got := v.Repair(`MATCH (i:Industry {name: "Banking"}) RETURN i`)

	assert.True(t, got.WasChanged)
	assert.Equal(t, `MATCH (i:Industry {name: 'Banking'}) RETURN i`, got.Text)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, `"Banking"`, got.Notes[0].Before)
	assert.Equal(t, `'Banking'`, got.Notes[0].After)
}

func TestRepair_QuotingEscapesEmbeddedSingleQuotes(t *testing.T) {
	v := NewValidator()

	got := v.Repair(`MATCH (s:Sector {name: "O'Neill Banking"}) RETURN s`)

	assert.True(t, got.WasChanged)
	assert.Equal(t, `MATCH (s:Sector {name: 'O\'Neill Banking'}) RETURN s`, got.Text)
}

func TestRepair_QuotingSkipsSingleQuotedLiterals(t *testing.T) {
	v := NewValidator()

	// double quotes inside a single-quoted literal are valid and stay put
	query := `MATCH (n:PainPoint) WHERE n.note = 'He said "hi"' RETURN n`
	got := v.Repair(query)

	assert.False(t, got.WasChanged)
	assert.Equal(t, query, got.Text)
	assert.Empty(t, got.Notes)
}

func TestRepair_QuotingMixedLiterals(t *testing.T) {
	v := NewValidator()

	got := v.Repair(`MATCH (n) WHERE n.a = 'keep "this"' AND n.b = "fix this" RETURN n`)

	assert.True(t, got.WasChanged)
	assert.Equal(t, `MATCH (n) WHERE n.a = 'keep "this"' AND n.b = 'fix this' RETURN n`, got.Text)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, `"fix this"`, got.Notes[0].Before)
}

func TestRepair_RelationshipVariableInjection(t *testing.T) {
	v := NewValidator()

	// relationships(p) where p is bound as a node on a one-hop pattern with
	// no relationship variable: a fresh variable is injected and substituted.
	got := v.Repair(`MATCH (a:Industry)-[:HAS_SECTOR]->(p:Sector) RETURN p, relationships(p)`)

	assert.True(t, got.WasChanged)
	assert.Equal(t, `MATCH (a:Industry)-[rel:HAS_SECTOR]->(p:Sector) RETURN p, rel`, got.Text)
}

func TestRepair_ReusesExistingRelationshipVariable(t *testing.T) {
	v := NewValidator()

	got := v.Repair(`MATCH (a:Industry)-[r:HAS_SECTOR]->(p:Sector) RETURN p, relationships(p)`)

	assert.True(t, got.WasChanged)
	assert.Equal(t, `MATCH (a:Industry)-[r:HAS_SECTOR]->(p:Sector) RETURN p, r`, got.Text)
}

func TestRepair_PathVariableFallback(t *testing.T) {
	v := NewValidator()

	// nodes(s) has no one-hop relationship equivalent, so the match clause
	// gets an explicit path binding instead.
	got := v.Repair(`MATCH (s:Sector)-[:HAS_DEPARTMENT]->(d:Department) RETURN nodes(s)`)

	assert.True(t, got.WasChanged)
	assert.Equal(t, `MATCH path = (s:Sector)-[:HAS_DEPARTMENT]->(d:Department) RETURN nodes(path)`, got.Text)
}

func TestRepair_PathArgumentIsNotADefect(t *testing.T) {
	v := NewValidator()

	query := `MATCH p = (a:Industry)-[:HAS_SECTOR]->(s:Sector) RETURN nodes(p), relationships(p)`
	got := v.Repair(query)

	assert.False(t, got.WasChanged)
	assert.Equal(t, query, got.Text)
}

func TestRepair_Idempotent(t *testing.T) {
	v := NewValidator()

	first := v.Repair(`MATCH (a:Industry)-[:HAS_SECTOR]->(p:Sector) WHERE a.name = "Banking" RETURN p, relationships(p)`)
	require.True(t, first.WasChanged)

	second := v.Repair(first.Text)
	assert.False(t, second.WasChanged, "repaired query must report no further defects")
	assert.Equal(t, first.Text, second.Text)
}

func TestRepair_UnrepairableDefectLeftInPlace(t *testing.T) {
	v := NewValidator()

	// The variable is never bound in the query, so neither rewrite applies.
	query := `RETURN relationships(ghost)`
	got := v.Repair(query)

	assert.False(t, got.WasChanged)
	assert.Equal(t, query, got.Text)
}

func TestReviewWithLLM_AppliesCorrection(t *testing.T) {
	v := NewValidator()
	provider := providers.NewMockProvider(
		`{"corrected_query": "MATCH (n:Sector) RETURN n", "corrections": ["bound missing label"], "changed": true}`,
	)

	got, err := v.ReviewWithLLM(context.Background(), provider, `MATCH (n) RETURN n`)

	require.NoError(t, err)
	assert.True(t, got.Changed)
	assert.Equal(t, "MATCH (n:Sector) RETURN n", got.Query)
	assert.Equal(t, []string{"bound missing label"}, got.Corrections)
}

func TestReviewWithLLM_NoChangeKeepsOriginal(t *testing.T) {
	v := NewValidator()
	original := `MATCH (n:Sector) RETURN n`
	provider := providers.NewMockProvider(
		`{"corrected_query": "` + original + `", "corrections": [], "changed": false}`,
	)

	got, err := v.ReviewWithLLM(context.Background(), provider, original)

	require.NoError(t, err)
	assert.False(t, got.Changed)
	assert.Equal(t, original, got.Query)
}

func TestReviewWithLLM_UnparseableResponseKeepsOriginal(t *testing.T) {
	v := NewValidator()
	original := `MATCH (n:Sector) RETURN n`
	provider := providers.NewMockProvider("I think the query looks fine to me!")

	got, err := v.ReviewWithLLM(context.Background(), provider, original)

	assert.Error(t, err)
	assert.Equal(t, original, got.Query)
	assert.False(t, got.Changed)
}
