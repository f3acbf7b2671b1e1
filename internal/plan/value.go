package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/eolecvk/ai-catalog-sub002/internal/types"
)

// Value is a tagged union over the two kinds of step parameter: a literal
// JSON-like value, or a reference to an earlier step's output. Exactly one
// of the two fields is set.
type Value struct {
	Literal any
	Ref     *StepReference
}

// StepReference points at an earlier step's output, optionally narrowed to a
// nested field path. Step indices are 1-based, matching how plans number
// their steps in prompts and error messages.
type StepReference struct {
	Step int
	Path []string
}

func (r *StepReference) String() string {
	s := fmt.Sprintf("step %d output", r.Step)
	if len(r.Path) > 0 {
		s += "." + strings.Join(r.Path, ".")
	}
	return s
}

// refPattern matches the textual reference forms the planner emits:
// "step 2 output", "step 2 output.query", "$step2.output.query".
var refPattern = regexp.MustCompile(`(?i)^\s*(?:\$\s*)?step\s*(\d+)(?:\s+output|\.output)((?:\.[A-Za-z_][\w]*)*)\s*$`)

// ParseValue classifies a raw parameter value. Strings matching the step
// reference grammar become references; everything else stays literal.
func ParseValue(raw any) Value {
	s, ok := raw.(string)
	if !ok {
		return Value{Literal: raw}
	}
	m := refPattern.FindStringSubmatch(s)
	if m == nil {
		return Value{Literal: raw}
	}
	idx, err := strconv.Atoi(m[1])
	if err != nil || idx < 1 {
		return Value{Literal: raw}
	}
	ref := &StepReference{Step: idx}
	if m[2] != "" {
		ref.Path = strings.Split(strings.TrimPrefix(m[2], "."), ".")
	}
	return Value{Ref: ref}
}

// IsRef reports whether the value is a step reference.
func (v Value) IsRef() bool {
	return v.Ref != nil
}

// Resolve produces the concrete value: literals pass through, references are
// looked up in the execution state. A reference to a missing or failed step
// is a dependency error; the caller treats it like a task failure.
func (v Value) Resolve(state ExecutionState) (any, error) {
	if v.Ref == nil {
		return v.Literal, nil
	}
	result, ok := state[v.Ref.Step]
	if !ok {
		return nil, types.NewError(types.PLAN_DEPENDENCY_MISSING,
			fmt.Sprintf("reference %q points at a step that has not run", v.Ref))
	}
	if !result.Success {
		return nil, types.NewError(types.PLAN_DEPENDENCY_MISSING,
			fmt.Sprintf("reference %q points at a failed step", v.Ref))
	}
	var current any = result.Output
	for _, field := range v.Ref.Path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, types.NewError(types.PLAN_DEPENDENCY_MISSING,
				fmt.Sprintf("reference %q: field %q is not addressable", v.Ref, field))
		}
		current, ok = m[field]
		if !ok {
			return nil, types.NewError(types.PLAN_DEPENDENCY_MISSING,
				fmt.Sprintf("reference %q: field %q not present in step output", v.Ref, field))
		}
	}
	return current, nil
}

// ResolveParams walks a step's parameter map and resolves every reference it
// finds, recursing into nested maps and lists. The input map is never
// mutated.
func ResolveParams(params map[string]any, state ExecutionState) (map[string]any, error) {
	resolved := make(map[string]any, len(params))
	for key, raw := range params {
		val, err := resolveAny(raw, state)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", key, err)
		}
		resolved[key] = val
	}
	return resolved, nil
}

func resolveAny(raw any, state ExecutionState) (any, error) {
	switch typed := raw.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			rv, err := resolveAny(v, state)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			rv, err := resolveAny(v, state)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return ParseValue(raw).Resolve(state)
	}
}
