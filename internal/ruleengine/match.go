package ruleengine

import (
	"regexp"
	"strings"
)

// matchKind orders match strategies by precedence: exact beats substring,
// substring beats regex, regex beats multi-word. Lower is stronger.
type matchKind int

const (
	matchNone matchKind = iota
	matchExact
	matchSubstring
	matchRegex
	matchMultiWord
)

// substringMinLength guards against trivial short patterns producing
// accidental containment matches.
const substringMinLength = 3

func (k matchKind) String() string {
	switch k {
	case matchExact:
		return "exact"
	case matchSubstring:
		return "substring"
	case matchRegex:
		return "regex"
	case matchMultiWord:
		return "multi-word"
	default:
		return "none"
	}
}

// matchPattern checks a rule pattern against a transaction description,
// trying each strategy in precedence order until one succeeds.
func matchPattern(description, pattern string) matchKind {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	desc := strings.ToLower(strings.TrimSpace(description))

	if pattern == "" || desc == "" {
		return matchNone
	}

	if pattern == desc {
		return matchExact
	}

	if len(pattern) > substringMinLength && strings.Contains(desc, pattern) {
		return matchSubstring
	}

	if looksLikeRegex(pattern) {
		re, err := regexp.Compile("(?i)" + pattern)
		if err == nil {
			if re.MatchString(description) {
				return matchRegex
			}
		} else if strings.Contains(desc, pattern) {
			// Invalid regex syntax falls back to containment.
			return matchSubstring
		}
		return matchNone
	}

	// Multi-word: every whitespace-separated token must appear somewhere
	// in the description.
	words := strings.Fields(pattern)
	if len(words) > 1 {
		for _, word := range words {
			if !strings.Contains(desc, word) {
				return matchNone
			}
		}
		return matchMultiWord
	}

	return matchNone
}

// looksLikeRegex reports whether a pattern is plausibly a regular expression
// rather than a literal string.
func looksLikeRegex(pattern string) bool {
	return strings.HasPrefix(pattern, "^") ||
		strings.Contains(pattern, ".*") ||
		strings.Contains(pattern, "[")
}
