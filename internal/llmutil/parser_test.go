// internal/llmutil/parser_test.go
package llmutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"surrounding whitespace", "\n  {\"a\":1}\n", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"untagged fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around object", "Here is the report: {\"a\":{\"b\":2}} Hope this helps.", `{"a":{"b":2}}`},
		{"prose before fence", "Sure!\n```json\n{\"a\":1}\n```", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractJSON_Failures(t *testing.T) {
	for _, input := range []string{"", "   ", "I cannot help with that.", "} backwards {"} {
		_, err := ExtractJSON(input)
		assert.ErrorIs(t, err, ErrNoJSON, "input %q", input)
	}
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Summary string `json:"summary"`
		Score   int    `json:"score"`
	}

	t.Run("decodes fenced object", func(t *testing.T) {
		got, err := ParseJSONResponse[payload]("```json\n{\"summary\":\"ok\",\"score\":7}\n```")
		require.NoError(t, err)
		assert.Equal(t, payload{Summary: "ok", Score: 7}, *got)
	})

	t.Run("reports malformed JSON", func(t *testing.T) {
		_, err := ParseJSONResponse[payload](`{"summary": "ok",}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal LLM JSON response")
	})

	t.Run("reports type mismatch", func(t *testing.T) {
		_, err := ParseJSONResponse[payload](`{"score": "high"}`)
		require.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab...", Truncate("abcdef", 2))
	assert.Equal(t, "", Truncate("abc", 0))
}
