package mocks

import (
	"errors"
	"sync"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// MockAIServiceFactory builds mock services for any configured provider
type MockAIServiceFactory struct {
	mu              sync.Mutex
	failEmbedding   bool
	failLLM         bool
	embeddingsBuilt int
	llmsBuilt       int
}

// NewMockAIServiceFactory creates a new MockAIServiceFactory
func NewMockAIServiceFactory() *MockAIServiceFactory {
	return &MockAIServiceFactory{}
}

func (f *MockAIServiceFactory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	if f.failEmbedding {
		return nil, errors.New("embedding factory failure")
	}
	f.embeddingsBuilt++
	return NewMockEmbeddingService(), nil
}

func (f *MockAIServiceFactory) CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}
	if f.failLLM {
		return nil, errors.New("llm factory failure")
	}
	f.llmsBuilt++
	return NewMockLLMService(), nil
}

// Helper methods for testing

func (f *MockAIServiceFactory) SetFailEmbedding(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failEmbedding = fail
}

func (f *MockAIServiceFactory) SetFailLLM(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failLLM = fail
}
