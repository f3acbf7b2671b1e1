package cypher

import (
	"context"
	"fmt"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// Review is the outcome of the LLM-assisted second-opinion pass.
type Review struct {
	Query       string   `json:"query"`
	Corrections []string `json:"corrections,omitempty"`
	Changed     bool     `json:"changed"`
}

// reviewChecklist is the explicit checklist shown to the LLM alongside the
// candidate query.
const reviewChecklist = `Check the Cypher query against this list and fix only genuine defects:
1. String literals must use single quotes, never double quotes.
2. Relationship variables must be bound and returned alongside node variables.
3. relationships() and nodes() may only be applied to path variables, never to node variables.
Respond with JSON: {"corrected_query": "...", "corrections": ["..."], "changed": true|false}.
If the query is already correct, return it unchanged with "changed": false.`

// ReviewWithLLM shows the candidate query back to the LLM with the defect
// checklist and applies its corrections. The pass is idempotent-safe: when
// the LLM reports no change, the original text is kept byte-for-byte.
func (v *Validator) ReviewWithLLM(ctx context.Context, provider llm.Provider, query string) (Review, error) {
	original := Review{Query: query}

	prompt := fmt.Sprintf("%s\n\nQuery:\n```\n%s\n```", reviewChecklist, query)
	resp, err := provider.Complete(ctx, llm.NewCompletionRequest(
		[]llm.Message{
			llm.NewSystemMessage("You are a Cypher syntax reviewer. Respond only with JSON."),
			llm.NewUserMessage(prompt),
		},
		llm.WithTemperature(0),
		llm.WithMaxTokens(1024),
	))
	if err != nil {
		return original, types.WrapError(types.CYPHER_REVIEW_FAILED, "review completion failed", err)
	}

	parsed, err := llm.ExtractJSONAs[struct {
		CorrectedQuery string   `json:"corrected_query"`
		Corrections    []string `json:"corrections"`
		Changed        bool     `json:"changed"`
	}](resp.Message.Content)
	if err != nil {
		return original, types.WrapError(types.CYPHER_REVIEW_FAILED, "review response unparseable", err)
	}

	corrected := strings.TrimSpace(parsed.CorrectedQuery)
	if !parsed.Changed || corrected == "" || corrected == query {
		return original, nil
	}

	v.logger.Info("LLM review corrected query",
		"corrections", len(parsed.Corrections),
	)

	return Review{
		Query:       corrected,
		Corrections: parsed.Corrections,
		Changed:     true,
	}, nil
}
