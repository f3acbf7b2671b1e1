// Package cypher provides static validation and best-effort repair for
// LLM-generated Cypher. Two defect classes are handled deterministically:
// path-only functions applied to single-entity variables, and double-quoted
// string literals. A second, LLM-assisted review pass can be layered on top
// via ReviewWithLLM.
package cypher

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// RepairNote records one applied repair for observability.
type RepairNote struct {
	Before string `json:"before"`
	After  string `json:"after"`
	Reason string `json:"reason"`
}

// RepairedQuery is the outcome of the deterministic repair pass.
type RepairedQuery struct {
	Text       string       `json:"text"`
	WasChanged bool         `json:"was_changed"`
	Notes      []RepairNote `json:"notes,omitempty"`
}

// Validator detects and repairs known defect classes in generated Cypher.
// Repairs are heuristic and best-effort: when no applicable rewrite pattern
// is found the defect is left in place and surfaces later as an execution
// failure.
type Validator struct {
	logger *slog.Logger
}

// Option is a functional option for configuring a Validator.
type Option func(*Validator)

// WithLogger sets the logger used to record applied repairs.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = l
	}
}

// NewValidator creates a Validator with the given options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// pathFnPattern matches path-only function calls with a bare variable
// argument: relationships(x) or nodes(x).
var pathFnPattern = regexp.MustCompile(`\b(relationships|nodes)\s*\(\s*([A-Za-z_][\w]*)\s*\)`)

// pathBindingPattern matches explicit path bindings: MATCH p = (...).
var pathBindingPattern = regexp.MustCompile(`\b([A-Za-z_][\w]*)\s*=\s*\(`)

// doubleQuotePattern matches a double-quoted string literal, tolerating
// escaped characters inside.
var doubleQuotePattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)

// matchClausePattern matches one MATCH clause up to the following keyword.
var matchClausePattern = regexp.MustCompile(`(?is)\bMATCH\s+.*?(?:\bWHERE\b|\bRETURN\b|\bWITH\b|\bMATCH\b|$)`)

// Repair runs the deterministic defect scan and rewrites what it can.
// The input is never mutated; the repaired text is returned alongside the
// applied repair notes.
func (v *Validator) Repair(query string) RepairedQuery {
	result := RepairedQuery{Text: query}

	result = v.repairQuoting(result)
	result = v.repairPathFunctions(result)

	for _, note := range result.Notes {
		v.logger.Info("repaired generated query",
			"before", note.Before,
			"after", note.After,
			"reason", note.Reason,
		)
	}

	return result
}

// repairQuoting rewrites double-quoted string literals to the single-quote
// convention, escaping any embedded single quotes. The text is scanned so
// that single-quoted literals are passed through untouched; double quotes
// inside them are already valid Cypher.
func (v *Validator) repairQuoting(in RepairedQuery) RepairedQuery {
	out := in
	text := in.Text
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(text); {
		switch text[i] {
		case '\'':
			end := singleQuoteEnd(text, i)
			b.WriteString(text[i:end])
			i = end
		case '"':
			loc := doubleQuotePattern.FindStringIndex(text[i:])
			if loc == nil || loc[0] != 0 {
				// unterminated literal; leave for execution-time handling
				b.WriteByte(text[i])
				i++
				continue
			}
			match := text[i : i+loc[1]]
			inner := match[1 : len(match)-1]
			inner = strings.ReplaceAll(inner, `\"`, `"`)
			inner = strings.ReplaceAll(inner, `'`, `\'`)
			replacement := "'" + inner + "'"

			b.WriteString(replacement)
			out.WasChanged = true
			out.Notes = append(out.Notes, RepairNote{
				Before: match,
				After:  replacement,
				Reason: "string literals must use single quotes",
			})
			i += loc[1]
		default:
			b.WriteByte(text[i])
			i++
		}
	}

	out.Text = b.String()
	return out
}

// singleQuoteEnd returns the index one past the closing quote of the
// single-quoted literal opening at start, honoring backslash escapes.
// Unterminated literals run to the end of the text.
func singleQuoteEnd(text string, start int) int {
	for i := start + 1; i < len(text); i++ {
		switch text[i] {
		case '\\':
			i++
		case '\'':
			return i + 1
		}
	}
	return len(text)
}

// repairPathFunctions handles path-only functions applied to single-entity
// variables. Preferred fix: when the variable is the target of a simple
// one-hop pattern, bind a relationship variable on that hop and substitute
// the call with it. Fallback: bind an explicit path variable on the MATCH
// clause and redirect the call to it.
func (v *Validator) repairPathFunctions(in RepairedQuery) RepairedQuery {
	out := in

	pathVars := boundPathVariables(out.Text)

	for _, m := range pathFnPattern.FindAllStringSubmatch(out.Text, -1) {
		call, fn, arg := m[0], m[1], m[2]

		if pathVars[arg] {
			continue // argument is a genuine path binding
		}
		if !bindsNodeVariable(out.Text, arg) {
			continue // unknown variable; leave for execution-time handling
		}

		if fixed, note, ok := v.bindRelationshipVariable(out.Text, call, fn, arg); ok {
			out.Text = fixed
			out.WasChanged = true
			out.Notes = append(out.Notes, note)
			continue
		}

		if fixed, note, ok := v.bindPathVariable(out.Text, call, fn, arg); ok {
			out.Text = fixed
			out.WasChanged = true
			out.Notes = append(out.Notes, note)
			pathVars = boundPathVariables(out.Text)
		}
		// Neither rewrite applied: defect left in place, best-effort only.
	}

	return out
}

// bindRelationshipVariable applies the one-hop fix: the hop targeting arg
// gets a named relationship variable (reusing an existing one when present)
// and the path-function call is replaced by that variable. Only meaningful
// for relationships(); nodes() has no single-relationship equivalent.
func (v *Validator) bindRelationshipVariable(query, call, fn, arg string) (string, RepairNote, bool) {
	if fn != "relationships" {
		return "", RepairNote{}, false
	}

	hopPattern := regexp.MustCompile(`-\s*\[\s*([A-Za-z_][\w]*)?\s*(:[A-Za-z_][\w|]*)?([^\]]*)\]\s*->\s*\(` + regexp.QuoteMeta(arg) + `\b`)
	loc := hopPattern.FindStringSubmatchIndex(query)
	if loc == nil {
		return "", RepairNote{}, false
	}

	relVar := submatch(query, loc, 1)
	fixed := query
	if relVar == "" {
		relVar = freshVariable(query, "rel")
		// Insert the variable name right after the opening bracket of the hop.
		open := strings.Index(query[loc[0]:loc[1]], "[") + loc[0] + 1
		fixed = query[:open] + relVar + query[open:]
	}

	replaced := strings.Replace(fixed, call, relVar, 1)
	note := RepairNote{
		Before: call,
		After:  relVar,
		Reason: fmt.Sprintf("%s() requires a path; bound relationship variable %s on the hop targeting %s", fn, relVar, arg),
	}
	return replaced, note, true
}

// bindPathVariable applies the fallback fix: the MATCH clause containing arg
// gets an explicit path binding and the call is redirected to it.
func (v *Validator) bindPathVariable(query, call, fn, arg string) (string, RepairNote, bool) {
	nodeRef := regexp.MustCompile(`\(\s*` + regexp.QuoteMeta(arg) + `\b`)

	for _, loc := range matchClausePattern.FindAllStringIndex(query, -1) {
		clause := query[loc[0]:loc[1]]
		if !nodeRef.MatchString(clause) {
			continue
		}
		if pathBindingPattern.MatchString(clause) {
			continue // clause already binds a path variable elsewhere
		}

		pathVar := freshVariable(query, "path")
		rebound := regexp.MustCompile(`(?i)^MATCH\s+`).ReplaceAllString(clause, "MATCH "+pathVar+" = ")
		fixed := query[:loc[0]] + rebound + query[loc[1]:]
		fixed = strings.Replace(fixed, call, fn+"("+pathVar+")", 1)

		note := RepairNote{
			Before: call,
			After:  fn + "(" + pathVar + ")",
			Reason: fmt.Sprintf("%s() requires a path; bound path variable %s on the match clause", fn, pathVar),
		}
		return fixed, note, true
	}

	return "", RepairNote{}, false
}

// boundPathVariables returns the set of variables bound as paths.
func boundPathVariables(query string) map[string]bool {
	vars := make(map[string]bool)
	for _, m := range pathBindingPattern.FindAllStringSubmatch(query, -1) {
		vars[m[1]] = true
	}
	return vars
}

// bindsNodeVariable reports whether arg appears as a node pattern variable.
func bindsNodeVariable(query, arg string) bool {
	return regexp.MustCompile(`\(\s*` + regexp.QuoteMeta(arg) + `\s*[:)\s{]`).MatchString(query)
}

// freshVariable returns prefix, prefix1, prefix2, ... — the first not already
// present as a word in the query.
func freshVariable(query, prefix string) string {
	for i := 0; ; i++ {
		candidate := prefix
		if i > 0 {
			candidate = fmt.Sprintf("%s%d", prefix, i)
		}
		if !regexp.MustCompile(`\b` + candidate + `\b`).MatchString(query) {
			return candidate
		}
	}
}

// submatch extracts a submatch by index pair, returning "" when absent.
func submatch(s string, loc []int, n int) string {
	if 2*n+1 >= len(loc) || loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}
