// internal/llmutil/parser.go
package llmutil

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	json "github.com/json-iterator/go"
)

// ErrNoJSON is returned when a response contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in model response")

// fencedObjectRegex pulls a JSON object out of a markdown code fence. \x60 is a
// backtick, which raw strings cannot hold.
var fencedObjectRegex = regexp.MustCompile("(?s)\x60\x60\x60(?:json|JSON)?\\s*({.*})\\s*\x60\x60\x60")

// ExtractJSON isolates the JSON object inside a model response. Responses
// requested in JSON mode are normally bare objects, but models occasionally
// wrap them in a markdown fence or a sentence of prose.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", ErrNoJSON
	}

	if strings.HasPrefix(response, "{") && strings.HasSuffix(response, "}") {
		return response, nil
	}

	if strings.Contains(response, "```") {
		if m := fencedObjectRegex.FindStringSubmatch(response); len(m) > 1 {
			return m[1], nil
		}
	}

	first := strings.Index(response, "{")
	last := strings.LastIndex(response, "}")
	if first == -1 || last <= first {
		return "", fmt.Errorf("%w. Response (truncated): %s", ErrNoJSON, Truncate(response, 200))
	}
	return response[first : last+1], nil
}

// ParseJSONResponse extracts the JSON object from a model response and
// unmarshals it into T.
func ParseJSONResponse[T any](response string) (*T, error) {
	raw, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM JSON response: %w. Extracted JSON (truncated): %s", err, Truncate(raw, 500))
	}
	return &result, nil
}

// Truncate shortens s to at most maxLen bytes for inclusion in logs and errors.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	// Byte truncation; good enough for diagnostics.
	return s[:maxLen] + "..."
}
