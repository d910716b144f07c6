package ai

import (
	"context"
	"fmt"
	"time"

	"bkowalczyk/pnl-csv/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient implements the Client interface against the Google Gemini API.
type GeminiClient struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	timeout time.Duration
	logger  logging.Logger
}

// NewGeminiClient creates a Gemini-backed AI client.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeoutSeconds int, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   client.GenerativeModel(model),
		timeout: time.Duration(timeoutSeconds) * time.Second,
		logger:  logger,
	}, nil
}

// Generate sends the prompt to Gemini and returns the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.WithField("prompt_len", len(prompt)).Debug("Sending prompt to Gemini")

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}

	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
