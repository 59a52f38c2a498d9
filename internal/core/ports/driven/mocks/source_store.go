package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// MockSourceStore is an in-memory implementation of SourceStore for testing
type MockSourceStore struct {
	mu      sync.RWMutex
	sources map[string]*domain.Source
}

// NewMockSourceStore creates a new MockSourceStore
func NewMockSourceStore() *MockSourceStore {
	return &MockSourceStore{
		sources: make(map[string]*domain.Source),
	}
}

func (m *MockSourceStore) Save(ctx context.Context, source *domain.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *source
	m.sources[source.ID] = &copied
	return nil
}

func (m *MockSourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	source, ok := m.sources[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *source
	return &copied, nil
}

func (m *MockSourceStore) List(ctx context.Context, limit, offset int) ([]*domain.Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []*domain.Source
	for _, s := range m.sources {
		copied := *s
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].IngestedAt.After(all[j].IngestedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *MockSourceStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sources, id)
	return nil
}

func (m *MockSourceStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sources), nil
}
