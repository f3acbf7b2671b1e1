// Package schema holds the static description of the catalog graph: node
// labels, relationship types, the synonym table used for entity suggestions,
// and the example queries offered during clarification.
//
// The catalog is read-only process-wide configuration. It is constructed once
// and injected into every component that needs it; nothing mutates it after
// construction.
package schema

import "strings"

// Catalog describes the labeled property graph the engine answers
// questions against.
type Catalog struct {
	// NodeLabels lists every node label present in the graph.
	NodeLabels []string

	// Relationships lists every relationship type present in the graph.
	Relationships []Relationship

	// Synonyms maps lowercase domain terms to canonical entity names.
	// Suggestions offered to the user are drawn exclusively from this table
	// and from FallbackSuggestions.
	Synonyms map[string][]string

	// FallbackSuggestions is the general suggestion list used when no
	// synonym matches the user's input.
	FallbackSuggestions []string

	// ExampleQueries is the fixed menu shown in clarification messages.
	ExampleQueries []string
}

// Relationship describes one relationship type with its endpoint labels.
type Relationship struct {
	Type string
	From string
	To   string
}

// String renders the relationship in Cypher pattern notation.
func (r Relationship) String() string {
	return "(" + r.From + ")-[:" + r.Type + "]->(" + r.To + ")"
}

// Default returns the catalog for the AI product catalog graph.
func Default() *Catalog {
	return &Catalog{
		NodeLabels: []string{
			"Industry",
			"Sector",
			"Department",
			"PainPoint",
			"AIApplication",
		},
		Relationships: []Relationship{
			{Type: "HAS_SECTOR", From: "Industry", To: "Sector"},
			{Type: "HAS_DEPARTMENT", From: "Sector", To: "Department"},
			{Type: "EXPERIENCES", From: "Department", To: "PainPoint"},
			{Type: "SOLVES", From: "AIApplication", To: "PainPoint"},
		},
		Synonyms: map[string][]string{
			"retail":     {"Retail Banking"},
			"commercial": {"Commercial Banking"},
			"investment": {"Investment Banking"},
			"health":     {"Health Insurance"},
			"life":       {"Life Insurance"},
			"property":   {"Property & Casualty Insurance"},
			"bank":       {"Banking"},
			"banking":    {"Banking"},
			"insurance":  {"Insurance"},
			"fraud":      {"Fraud Detection"},
			"claims":     {"Claims Processing"},
			"lending":    {"Loan Underwriting"},
			"support":    {"Customer Support Automation"},
		},
		FallbackSuggestions: []string{
			"Banking",
			"Insurance",
			"Retail Banking",
			"Health Insurance",
		},
		ExampleQueries: []string{
			"Show me all sectors in the Banking industry",
			"What pain points does Retail Banking experience?",
			"Which AI applications solve fraud detection problems?",
			"Compare Retail Banking and Commercial Banking",
		},
	}
}

// HasLabel reports whether label is a known node label. Matching is
// case-sensitive: labels are identifiers, not free text.
func (c *Catalog) HasLabel(label string) bool {
	for _, l := range c.NodeLabels {
		if l == label {
			return true
		}
	}
	return false
}

// RelationshipBetween returns the relationship type connecting two labels in
// either direction, or "" when the labels are not directly connected.
func (c *Catalog) RelationshipBetween(a, b string) string {
	for _, r := range c.Relationships {
		if (r.From == a && r.To == b) || (r.From == b && r.To == a) {
			return r.Type
		}
	}
	return ""
}

// SuggestionsFor returns canonical entity names whose synonym keys appear as
// substrings of the input. When nothing matches, the general fallback list is
// returned. The result never contains a name absent from the catalog tables.
func (c *Catalog) SuggestionsFor(input string) []string {
	lowered := strings.ToLower(input)

	var out []string
	seen := make(map[string]bool)
	for term, names := range c.Synonyms {
		if !strings.Contains(lowered, term) {
			continue
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}

	if len(out) == 0 {
		return append([]string(nil), c.FallbackSuggestions...)
	}
	return out
}

// PromptDescription renders the schema for inclusion in LLM prompts.
func (c *Catalog) PromptDescription() string {
	var sb strings.Builder
	sb.WriteString("Node labels: ")
	sb.WriteString(strings.Join(c.NodeLabels, ", "))
	sb.WriteString("\nRelationships:\n")
	for _, r := range c.Relationships {
		sb.WriteString("  ")
		sb.WriteString(r.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
