// Package ai wraps the generative completion provider behind note-centric
// helpers: summaries, tag suggestions, related topics, chat, and search
// expansion.
package ai

import (
	"context"
	"sync"
)

// CompletionOptions tune a single completion call.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float32
}

// Provider is the single-shot completion contract. All context is carried
// in the prompt; no conversation state lives on the provider side.
type Provider interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

// MockProvider is a canned-response Provider for tests and for running
// the server without an API key.
type MockProvider struct {
	mu        sync.Mutex
	Response  string
	Err       error
	Prompts   []string
	responses []string
}

// NewMockProvider returns a provider that answers every prompt with the
// given response.
func NewMockProvider(response string) *MockProvider {
	return &MockProvider{Response: response}
}

// Queue appends responses returned in order before falling back to the
// default Response.
func (m *MockProvider) Queue(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// Complete records the prompt and returns the configured response.
func (m *MockProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.responses) > 0 {
		r := m.responses[0]
		m.responses = m.responses[1:]
		return r, nil
	}
	return m.Response, nil
}

// LastPrompt returns the most recent prompt, or "".
func (m *MockProvider) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Prompts) == 0 {
		return ""
	}
	return m.Prompts[len(m.Prompts)-1]
}
