// Package ai provides the pluggable AI oracle used for column-mapping
// inference and fallback categorization.
package ai

import "context"

// Client defines the interface for AI text generation. This abstraction
// allows the pipeline to be tested independently of external API calls and
// provides flexibility in choosing AI providers.
type Client interface {
	// Generate sends a prompt to the AI service and returns the raw text
	// reply. Callers are responsible for extracting structured data from
	// the free-form response.
	Generate(ctx context.Context, prompt string) (string, error)
}
