package mocks

import (
	"context"
	"sync"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// MockLLMService is a scriptable mock implementation of LLMService.
// Responses are returned in order; when the script runs out the default
// response is used.
type MockLLMService struct {
	mu        sync.Mutex
	responses []string
	defaults  string
	failNext  bool
	prompts   []driven.Prompt
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		defaults: "mock completion",
	}
}

func (m *MockLLMService) Complete(ctx context.Context, prompt driven.Prompt, opts driven.CompletionOptions) (*driven.Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)

	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}

	text := m.defaults
	if len(m.responses) > 0 {
		text = m.responses[0]
		m.responses = m.responses[1:]
	}
	return &driven.Completion{Text: text, TokenCount: len(text) / 4}, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

// QueueResponse appends a scripted response
func (m *MockLLMService) QueueResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, text)
}

// SetDefaultResponse sets the response used when the script is empty
func (m *MockLLMService) SetDefaultResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = text
}

func (m *MockLLMService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Prompts returns every prompt seen so far
func (m *MockLLMService) Prompts() []driven.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]driven.Prompt, len(m.prompts))
	copy(out, m.prompts)
	return out
}
