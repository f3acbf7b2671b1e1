package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// Similarity weights for the composite fuzzy score. The sum can exceed 1.0
// on paper; the final score is capped.
const (
	weightContainment  = 0.7
	weightTokenOverlap = 0.5
	weightEditDistance = 0.3
	weightSynonym      = 0.4

	// Edit-distance similarity only applies to short strings, where a
	// one-character typo is meaningful.
	editDistanceMaxLen = 20

	// A fuzzy match below this composite score is not considered valid.
	fuzzyValidThreshold = 0.3

	candidateLimit = 50
)

// EntityValidator resolves a user-supplied entity name against the schema
// and the live graph: exact schema match, exact data match, then fuzzy data
// match. Database errors never escape as Go errors; they become a structured
// invalid result with confidence zero.
type EntityValidator struct {
	graph   graph.Client
	catalog *schema.Catalog
	logger  *slog.Logger
}

func NewEntityValidator(deps Deps) *EntityValidator {
	return &EntityValidator{
		graph:   deps.Graph,
		catalog: deps.Catalog,
		logger:  deps.Logger,
	}
}

func (v *EntityValidator) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	entity, err := stringParam(params, "entity_type")
	if err != nil {
		return failure(err.Error())
	}
	entity = strings.TrimSpace(entity)

	// Tier 1: exact, case-sensitive schema label. No database needed.
	if v.catalog.HasLabel(entity) {
		return success(map[string]any{
			"entity_type":      entity,
			"valid":            true,
			"confidence":       1.0,
			"exists_in_schema": true,
			"match_type":       "schema",
		})
	}

	// Tier 2: exact, case-insensitive name/title match in live data.
	exact, lookupErr := v.exactDataMatch(ctx, entity)
	if lookupErr != nil {
		return v.lookupFailure(entity, lookupErr)
	}
	if exact != "" {
		return success(map[string]any{
			"entity_type":      entity,
			"valid":            true,
			"confidence":       1.0,
			"exists_in_schema": false,
			"match_type":       "data",
			"matched_name":     exact,
		})
	}

	// Tier 3: fuzzy match against live entity names.
	candidates, lookupErr := v.candidateNames(ctx, entity)
	if lookupErr != nil {
		return v.lookupFailure(entity, lookupErr)
	}

	bestName, bestScore := "", 0.0
	for _, name := range candidates {
		if score := v.compositeScore(entity, name); score > bestScore {
			bestName, bestScore = name, score
		}
	}

	if bestScore > fuzzyValidThreshold {
		return success(map[string]any{
			"entity_type":      entity,
			"valid":            true,
			"confidence":       bestScore,
			"exists_in_schema": false,
			"match_type":       "fuzzy",
			"matched_name":     bestName,
		})
	}

	// No match at all. Suggestions come exclusively from the curated
	// synonym table and the general fallback list.
	return &plan.StepResult{
		Success: false,
		Output: map[string]any{
			"entity_type":        entity,
			"valid":              false,
			"confidence":         0.0,
			"suggested_entities": v.catalog.SuggestionsFor(entity),
		},
		Error: fmt.Sprintf("entity %q not found in schema or data", entity),
	}
}

func (v *EntityValidator) lookupFailure(entity string, err error) *plan.StepResult {
	v.logger.Warn("entity lookup failed", "entity", entity, "error", err)
	return &plan.StepResult{
		Success: false,
		Output: map[string]any{
			"entity_type": entity,
			"valid":       false,
			"confidence":  0.0,
		},
		Error: fmt.Sprintf("entity lookup for %q failed: %v", entity, err),
	}
}

func (v *EntityValidator) exactDataMatch(ctx context.Context, entity string) (string, error) {
	result, err := v.graph.Query(ctx,
		`MATCH (n) WHERE toLower(n.name) = toLower($value) OR toLower(n.title) = toLower($value)
		 RETURN coalesce(n.name, n.title) AS name LIMIT 1`,
		map[string]any{"value": entity})
	if err != nil {
		return "", err
	}
	for _, record := range result.Records {
		if name, ok := record["name"].(string); ok {
			return name, nil
		}
	}
	return "", nil
}

func (v *EntityValidator) candidateNames(ctx context.Context, entity string) ([]string, error) {
	// Pull a bounded candidate set by token containment, scored in-process.
	result, err := v.graph.Query(ctx,
		`MATCH (n) WHERE n.name IS NOT NULL OR n.title IS NOT NULL
		 WITH coalesce(n.name, n.title) AS name
		 WHERE any(tok IN $tokens WHERE toLower(name) CONTAINS tok)
		 RETURN DISTINCT name LIMIT $limit`,
		map[string]any{
			"tokens": tokenize(entity),
			"limit":  candidateLimit,
		})
	if err != nil {
		return nil, err
	}
	var names []string
	for _, record := range result.Records {
		if name, ok := record["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// compositeScore combines containment, token overlap, edit distance, and
// synonym hits into a single similarity in [0, 1].
func (v *EntityValidator) compositeScore(input, candidate string) float64 {
	in := strings.ToLower(strings.TrimSpace(input))
	cand := strings.ToLower(strings.TrimSpace(candidate))
	if in == "" || cand == "" {
		return 0
	}

	score := 0.0
	if strings.Contains(cand, in) || strings.Contains(in, cand) {
		score += weightContainment
	}

	score += weightTokenOverlap * tokenOverlap(in, cand)

	if len(in) <= editDistanceMaxLen && len(cand) <= editDistanceMaxLen {
		score += weightEditDistance * levenshtein.Match(in, cand, nil)
	}

	if v.synonymHit(in, candidate) {
		score += weightSynonym
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// synonymHit reports whether the curated synonym table maps any fragment of
// the input onto the candidate's canonical name.
func (v *EntityValidator) synonymHit(input, candidate string) bool {
	for fragment, canonicals := range v.catalog.Synonyms {
		if !strings.Contains(input, fragment) {
			continue
		}
		for _, canonical := range canonicals {
			if strings.EqualFold(canonical, candidate) {
				return true
			}
		}
	}
	return false
}

// tokenOverlap is the shared-token count normalized by the longer token
// count.
func tokenOverlap(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, tok := range ta {
		set[tok] = true
	}
	shared := 0
	for _, tok := range tb {
		if set[tok] {
			shared++
		}
	}
	longer := len(ta)
	if len(tb) > longer {
		longer = len(tb)
	}
	return float64(shared) / float64(longer)
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?&()")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
