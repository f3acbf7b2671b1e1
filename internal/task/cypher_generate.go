package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/cypher"
	"github.com/eolecvk/ai-catalog-sub002/internal/llm"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// synthesisMode selects one of the prompt templates for Cypher generation.
type synthesisMode string

const (
	modePlain      synthesisMode = "plain"
	modeProxy      synthesisMode = "proxy_entity"
	modeExclusion  synthesisMode = "exclusion"
	modeComparison synthesisMode = "comparison"
	modeMultiLevel synthesisMode = "multi_level"
)

// CypherGenerator translates a natural-language goal into a Cypher query via
// the LLM, then runs the deterministic repairer and an LLM review pass over
// the candidate before returning it.
type CypherGenerator struct {
	llm       llm.Provider
	catalog   *schema.Catalog
	validator *cypher.Validator
	logger    *slog.Logger

	// reviewEnabled gates the second, LLM-assisted validation pass.
	reviewEnabled bool
}

func NewCypherGenerator(deps Deps) *CypherGenerator {
	return &CypherGenerator{
		llm:           deps.LLM,
		catalog:       deps.Catalog,
		validator:     cypher.NewValidator(cypher.WithLogger(deps.Logger)),
		logger:        deps.Logger,
		reviewEnabled: true,
	}
}

// synthesized mirrors the JSON shape the synthesis prompt requests.
type synthesized struct {
	Query              string         `json:"query"`
	Params             map[string]any `json:"params"`
	Explanation        string         `json:"explanation"`
	ConnectionStrategy string         `json:"connection_strategy"`
}

func (g *CypherGenerator) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	goal, err := stringParam(params, "goal")
	if err != nil {
		return failure(err.Error())
	}
	mode := resolveMode(params)

	req := llm.NewCompletionRequest(
		[]llm.Message{
			llm.NewSystemMessage(synthesisSystemPrompt),
			llm.NewUserMessage(g.buildPrompt(mode, goal, params)),
		},
		llm.WithTemperature(0.0),
		llm.WithMaxTokens(1024),
	)

	resp, err := g.llm.Complete(ctx, req)
	if err != nil {
		return failuref("cypher synthesis failed: %v", err)
	}

	syn, parseErr := parseSynthesized(resp.Message.Content)
	if parseErr != nil {
		return failuref("cypher synthesis produced unusable output: %v", parseErr)
	}
	if strings.TrimSpace(syn.Query) == "" {
		return failure("cypher synthesis produced an empty query")
	}

	// Deterministic repair first, then the LLM review pass. Both are
	// best-effort; an unrepaired defect surfaces at execution time.
	repaired := g.validator.Repair(syn.Query)
	query := repaired.Text

	var corrections []string
	if g.reviewEnabled {
		review, reviewErr := g.validator.ReviewWithLLM(ctx, g.llm, query)
		if reviewErr != nil {
			g.logger.Warn("llm query review failed, keeping deterministic result",
				"error", reviewErr)
		} else {
			query = review.Query
			corrections = review.Corrections
		}
	}

	output := map[string]any{
		"query":              query,
		"params":             syn.Params,
		"explanation":        syn.Explanation,
		"connectionStrategy": syn.ConnectionStrategy,
		"mode":               string(mode),
	}
	if repaired.WasChanged {
		notes := make([]string, 0, len(repaired.Notes))
		for _, n := range repaired.Notes {
			notes = append(notes, n.Reason)
		}
		output["repairs"] = notes
	}
	if len(corrections) > 0 {
		output["reviewCorrections"] = corrections
	}
	return success(output)
}

func parseSynthesized(content string) (*synthesized, error) {
	text, err := llm.ExtractJSON(content)
	if err != nil {
		text, err = llm.ExtractJSONLenient(content)
		if err != nil {
			return nil, err
		}
	}
	var syn synthesized
	if err := json.Unmarshal([]byte(text), &syn); err != nil {
		return nil, err
	}
	return &syn, nil
}

// resolveMode picks the prompt template from auxiliary parameter flags. An
// explicit "mode" param wins; otherwise flags are checked in a fixed order.
// Both analytics directions ("exclusion" and "inclusion") use the
// existence/non-existence template, which covers either direction.
func resolveMode(params map[string]any) synthesisMode {
	switch m := synthesisMode(optionalString(params, "mode")); m {
	case modePlain, modeProxy, modeExclusion, modeComparison, modeMultiLevel:
		return m
	}
	switch analytics := optionalString(params, "analytics"); analytics {
	case "exclusion", "inclusion":
		return modeExclusion
	}
	switch {
	case optionalString(params, "proxy_company") != "":
		return modeProxy
	case optionalBool(params, "exclusion"):
		return modeExclusion
	case optionalBool(params, "comparison"):
		return modeComparison
	case optionalBool(params, "multi_level"):
		return modeMultiLevel
	default:
		return modePlain
	}
}

const synthesisSystemPrompt = `You write Cypher queries for a Neo4j graph of AI products, industries, and pain points. Respond with a single JSON object: {"query": "...", "params": {}, "explanation": "...", "connection_strategy": "..."}. No prose outside the JSON.

Hard rules for every query:
- String literals use single quotes only, never double quotes.
- Every relationship in a MATCH pattern gets a named variable, and relationship variables are returned alongside node variables. Node-only projections are defects.
- relationships() and nodes() are applied to path variables only, never to node variables.`

func (g *CypherGenerator) buildPrompt(mode synthesisMode, goal string, params map[string]any) string {
	var b strings.Builder

	b.WriteString("## Graph schema\n")
	b.WriteString(g.catalog.PromptDescription())
	b.WriteString("\n\n")

	switch mode {
	case modeProxy:
		company := optionalString(params, "proxy_company")
		fmt.Fprintf(&b, "## Task\nThe user asked about %q, which is not in the graph. ", company)
		b.WriteString("Map it onto the closest matching graph entities and query those as a stand-in. ")
		b.WriteString("The explanation must disclose that results are an approximation via proxy entities.\n")
	case modeExclusion:
		b.WriteString("## Task\nWrite an existence/non-existence query: use pattern predicates such as ")
		b.WriteString("NOT (x)-[:REL]->(y) or WHERE NOT EXISTS {...} to find entities that lack (or have) the stated relationship.\n")
	case modeComparison:
		b.WriteString("## Task\nFetch data for each named entity so the results can be compared side by side. ")
		b.WriteString("Return rows for every entity, tagged so they are attributable to their entity.\n")
	case modeMultiLevel:
		b.WriteString("## Task\nThe precise label level is unknown. Query both the coarse and the fine-grained label ")
		b.WriteString("and combine the two with UNION to maximize recall.\n")
	default:
		b.WriteString("## Task\nWrite one Cypher query that satisfies the goal.\n")
	}

	if entities := stringList(params, "entities"); len(entities) > 0 {
		fmt.Fprintf(&b, "\n## Known entities\n%s\n", strings.Join(entities, ", "))
	}
	if context := optionalString(params, "context"); context != "" {
		fmt.Fprintf(&b, "\n## Context\n%s\n", context)
	}

	fmt.Fprintf(&b, "\n## Goal\n%s\n", goal)
	return b.String()
}
