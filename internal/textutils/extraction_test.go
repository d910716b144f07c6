package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		expectError bool
	}{
		{name: "bare object", input: `{"a": 1}`, expected: `{"a": 1}`},
		{name: "object in prose", input: "Here is the mapping:\n{\"a\": 1}\nHope that helps!", expected: `{"a": 1}`},
		{name: "markdown fence", input: "```json\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "nested braces", input: `prefix {"a": {"b": 2}} suffix`, expected: `{"a": {"b": 2}}`},
		{name: "no object", input: "no json here", expectError: true},
		{name: "reversed delimiters", input: "} {", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ExtractJSONObject(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	out, err := ExtractJSONArray("reply:\n[{\"operation\": 1, \"category\": \"Rent\"}]\ndone")
	require.NoError(t, err)
	assert.Equal(t, `[{"operation": 1, "category": "Rent"}]`, out)

	_, err = ExtractJSONArray("{\"not\": \"an array\"}")
	assert.Error(t, err)
}
