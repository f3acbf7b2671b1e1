package task

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/graph"
	"github.com/eolecvk/ai-catalog-sub002/internal/plan"
	"github.com/eolecvk/ai-catalog-sub002/internal/schema"
)

// terminalFallbackMessage is returned when the catalog-listing query itself
// fails. It still terminates the clarification loop.
const terminalFallbackMessage = "I couldn't retrieve the live catalog right now. The catalog covers industries such as Banking and Insurance, their sectors, departments, pain points, and the AI applications that address them. Please ask about one of those."

// Clarifier asks the user a disambiguating question, or in terminal mode
// enumerates what the catalog actually contains and ends the clarification
// loop. Terminal responses always set needsClarification false and
// terminatesClarificationLoop true so a conversation cannot loop forever.
type Clarifier struct {
	graph   graph.Client
	catalog *schema.Catalog
	logger  *slog.Logger
}

func NewClarifier(deps Deps) *Clarifier {
	return &Clarifier{
		graph:   deps.Graph,
		catalog: deps.Catalog,
		logger:  deps.Logger,
	}
}

func (c *Clarifier) Run(ctx context.Context, params map[string]any) *plan.StepResult {
	if optionalBool(params, "provide_final_answer") {
		return c.terminal(ctx)
	}
	return c.normal(params)
}

func (c *Clarifier) normal(params map[string]any) *plan.StepResult {
	message := optionalString(params, "message")
	if message == "" {
		message = "Could you tell me more about what you're looking for?"
	}

	// The conversation_state tag adjusts phrasing only; the suggestion set
	// stays whatever was provided (or the catalog examples).
	switch optionalString(params, "conversation_state") {
	case "post_rejection":
		message = "No problem. " + message
	case "meta_conversation":
		message = "Happy to explain. " + message
	case "repeated_failure":
		message = "Sorry, I'm still not finding what you mean. " + message
	}

	suggestions := stringList(params, "suggestions")
	if len(suggestions) == 0 {
		suggestions = c.catalog.ExampleQueries
	}

	return success(map[string]any{
		"message":            message,
		"suggestions":        suggestions,
		"needsClarification": true,
	})
}

// terminal answers with the complete current catalog of industries and their
// sectors, formatted for a human.
func (c *Clarifier) terminal(ctx context.Context) *plan.StepResult {
	result, err := c.graph.Query(ctx,
		`MATCH (i:Industry)
		 OPTIONAL MATCH (i)-[r:HAS_SECTOR]->(s:Sector)
		 RETURN i.name AS industry, collect(s.name) AS sectors
		 ORDER BY industry`,
		nil)
	if err != nil {
		c.logger.Warn("catalog listing query failed, using fixed terminal message", "error", err)
		return success(map[string]any{
			"message":                     terminalFallbackMessage,
			"needsClarification":          false,
			"terminatesClarificationLoop": true,
		})
	}

	return success(map[string]any{
		"message":                     formatCatalog(result.Records),
		"needsClarification":          false,
		"terminatesClarificationLoop": true,
	})
}

func formatCatalog(records []map[string]any) string {
	if len(records) == 0 {
		return terminalFallbackMessage
	}

	var b strings.Builder
	b.WriteString("Here is what the catalog currently covers:\n")
	for _, record := range records {
		industry, _ := record["industry"].(string)
		if industry == "" {
			continue
		}
		sectors := collectStrings(record["sectors"])
		sort.Strings(sectors)
		if len(sectors) > 0 {
			fmt.Fprintf(&b, "- %s: %s\n", industry, strings.Join(sectors, ", "))
		} else {
			fmt.Fprintf(&b, "- %s\n", industry)
		}
	}
	b.WriteString("Ask me about any of these.")
	return b.String()
}

func collectStrings(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
