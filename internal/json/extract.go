// Package json extracts JSON values from LLM responses.
//
// Models often wrap JSON in markdown fences or surround it with commentary.
// The scanner here finds the first complete object or array, respecting
// string literals, so braces inside values do not confuse it.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a response holds no decodable JSON value.
var ErrNoJSON = errors.New("no JSON value found")

// ExtractJSON returns the first decodable JSON object or array in response.
func ExtractJSON(response string) (string, error) {
	response = stripMarkdownCodeBlocks(response)

	if json.Valid([]byte(response)) {
		return response, nil
	}

	for start := 0; start < len(response); start++ {
		c := response[start]
		if c != '{' && c != '[' {
			continue
		}
		end := matchClosing(response, start)
		if end < 0 {
			continue
		}
		candidate := response[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("%w in response: %q", ErrNoJSON, preview)
}

// ExtractJSONFromResponse extracts and decodes the first JSON value in response.
func ExtractJSONFromResponse[T any](response string) (T, error) {
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

// matchClosing returns the index of the bracket closing the one at start,
// or -1 when the value is unterminated.
func matchClosing(s string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// stripMarkdownCodeBlocks removes a surrounding ```json or ``` fence.
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}
