package mocks

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
)

// MockExtractor is a scriptable TextExtractor for testing. Paths map to
// canned text; unknown paths return the path itself as content.
type MockExtractor struct {
	mu         sync.RWMutex
	extensions []string
	content    map[string]string
	failPaths  map[string]bool
}

// NewMockExtractor creates a new MockExtractor
func NewMockExtractor(extensions ...string) *MockExtractor {
	if len(extensions) == 0 {
		extensions = []string{".txt"}
	}
	return &MockExtractor{
		extensions: extensions,
		content:    make(map[string]string),
		failPaths:  make(map[string]bool),
	}
}

func (m *MockExtractor) Extract(ctx context.Context, path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failPaths[path] {
		return "", context.DeadlineExceeded
	}
	if text, ok := m.content[path]; ok {
		return text, nil
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
}

func (m *MockExtractor) SupportedExtensions() []string {
	return m.extensions
}

// Helper methods for testing

func (m *MockExtractor) SetContent(path, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[path] = text
}

func (m *MockExtractor) FailOn(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPaths[path] = true
}
