package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// MockVectorStore is an in-memory implementation of VectorStore for testing.
// Query ranks by cosine similarity mapped into [0,1].
type MockVectorStore struct {
	mu       sync.RWMutex
	records  map[string]*domain.VectorRecord
	failNext bool
}

// NewMockVectorStore creates a new MockVectorStore
func NewMockVectorStore() *MockVectorStore {
	return &MockVectorStore{
		records: make(map[string]*domain.VectorRecord),
	}
}

func (m *MockVectorStore) Upsert(ctx context.Context, records []*domain.VectorRecord) error {
	if m.takeFailure() {
		return context.DeadlineExceeded
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *MockVectorStore) Query(ctx context.Context, embedding []float32, topK int, filters domain.Filters) ([]*domain.RetrievalResult, error) {
	if m.takeFailure() {
		return nil, context.DeadlineExceeded
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*domain.RetrievalResult
	for _, r := range m.records {
		if filters != nil && !filters.Matches(r.Payload.Tags) {
			continue
		}
		results = append(results, &domain.RetrievalResult{
			ID:       r.ID,
			SourceID: r.Payload.SourceID,
			Text:     r.Payload.Text,
			Score:    (cosine(embedding, r.Embedding) + 1) / 2,
			Tags:     r.Payload.Tags,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MockVectorStore) Delete(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *MockVectorStore) DeleteBySource(ctx context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.records {
		if r.Payload.SourceID == sourceID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *MockVectorStore) Stats(ctx context.Context) (*domain.StoreStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &domain.StoreStats{
		TotalVectors: len(m.records),
		PerSource:    make(map[string]int),
	}
	for _, r := range m.records {
		stats.PerSource[r.Payload.SourceID]++
	}
	return stats, nil
}

func (m *MockVectorStore) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockVectorStore) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockVectorStore) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockVectorStore) Get(id string) *domain.VectorRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[id]
}

func (m *MockVectorStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MockVectorStore) takeFailure() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return true
	}
	return false
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
