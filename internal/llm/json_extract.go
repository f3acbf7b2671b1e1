package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches markdown code fences with an optional language tag.
var fencePattern = regexp.MustCompile("(?s)```(\\w*)\\s*\\n(.+?)\\n```")

// trailingCommaPattern matches a comma immediately before a closing brace or
// bracket, the most common defect in LLM-emitted JSON.
var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// singleQuotedKeyPattern matches a single-quoted object key following an
// opening brace or a comma, e.g. {'steps': ...}. Values are left alone.
var singleQuotedKeyPattern = regexp.MustCompile(`([{,]\s*)'([^'\\]*)'(\s*:)`)

// ExtractJSON extracts JSON from an LLM response that may be wrapped in
// markdown. Priority:
//  1. JSON inside ```json ... ``` or ``` ... ``` code fences
//  2. the first balanced {...} or [...] in the raw response
func ExtractJSON(response string) (string, error) {
	if jsonStr, found := extractFromFence(response); found {
		return jsonStr, nil
	}

	if jsonStr, found := extractBalanced(response); found {
		return jsonStr, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response")
}

// ExtractJSONLenient is the second-chance parser applied when ExtractJSON
// fails. On top of fence stripping it removes trailing commas, rewrites
// single-quoted object keys to double quotes, and tolerates text before and
// after the JSON body. It still requires the result to parse.
func ExtractJSONLenient(response string) (string, error) {
	candidate := response
	if inner, found := extractFromFence(response); found {
		candidate = inner
	} else if inner, found := extractBalanced(response); found {
		candidate = inner
	}

	candidate = strings.TrimSpace(candidate)
	candidate = singleQuotedKeyPattern.ReplaceAllString(candidate, `$1"$2"$3`)
	candidate = trailingCommaPattern.ReplaceAllString(candidate, "$1")

	if isValidJSON(candidate) {
		return candidate, nil
	}

	// Last resort: re-balance after the comma cleanup changed offsets.
	if inner, found := extractBalanced(candidate); found {
		return inner, nil
	}

	return "", fmt.Errorf("no valid JSON object found in response after lenient cleanup")
}

// ExtractJSONAs extracts JSON and unmarshals into the provided type.
func ExtractJSONAs[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return result, nil
}

// extractFromFence finds valid JSON inside markdown code fences.
func extractFromFence(response string) (string, bool) {
	for _, match := range fencePattern.FindAllStringSubmatch(response, -1) {
		if len(match) < 3 {
			continue
		}

		lang := strings.ToLower(match[1])
		if lang != "" && lang != "json" {
			continue
		}

		content := strings.TrimSpace(match[2])
		if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
			continue
		}
		if isValidJSON(content) {
			return content, true
		}
	}

	return "", false
}

// extractBalanced finds the first balanced JSON object or array in free text.
func extractBalanced(response string) (string, bool) {
	startObj := strings.Index(response, "{")
	startArr := strings.Index(response, "[")

	start := -1
	closeChar := byte('}')
	if startObj >= 0 && (startArr < 0 || startObj < startArr) {
		start = startObj
	} else if startArr >= 0 {
		start = startArr
		closeChar = ']'
	}

	if start < 0 {
		return "", false
	}

	jsonStr := matchBracket(response[start:], closeChar)
	if jsonStr != "" && isValidJSON(jsonStr) {
		return jsonStr, true
	}

	return "", false
}

// matchBracket returns the prefix of s up to and including the bracket that
// balances s[0], respecting string literals and escapes.
func matchBracket(s string, closeChar byte) string {
	if len(s) == 0 {
		return ""
	}

	openChar := s[0]
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		switch c {
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}

	return ""
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}
