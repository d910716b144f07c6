package ai

import "context"

// MockClient is a scripted Client implementation for tests. It records the
// prompts it receives and replies with the queued responses in order.
type MockClient struct {
	Responses []string
	Err       error
	Prompts   []string

	next int
}

// Generate returns the next queued response or the configured error.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if m.next >= len(m.Responses) {
		return "", nil
	}
	resp := m.Responses[m.next]
	m.next++
	return resp, nil
}
