// Package textutils provides text extraction utilities for AI oracle replies.
package textutils

import (
	"fmt"
	"strings"
)

// ExtractJSONObject locates the first '{' and last '}' in free-form text and
// returns the substring between them. AI replies embed JSON in prose, so the
// JSON has to be cut out before parsing.
func ExtractJSONObject(text string) (string, error) {
	return extractDelimited(text, '{', '}')
}

// ExtractJSONArray locates the first '[' and last ']' in free-form text and
// returns the substring between them.
func ExtractJSONArray(text string) (string, error) {
	return extractDelimited(text, '[', ']')
}

func extractDelimited(text string, open, close byte) (string, error) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON delimited by %q...%q found in response", open, close)
	}
	return text[start : end+1], nil
}
