package driven

import (
	"context"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// VectorStore persists embeddings with metadata and answers nearest-neighbour
// queries. Upserts are last-write-wins on identical IDs, which the ingestion
// pipeline relies on for idempotent re-ingestion. Scores returned by Query
// are raw similarity values; callers clamp them into [0,1].
type VectorStore interface {
	// Upsert writes records, replacing any with the same ID
	Upsert(ctx context.Context, records []*domain.VectorRecord) error

	// Query returns the topK nearest records to the embedding, optionally
	// constrained by exact-match tag filters, highest score first
	Query(ctx context.Context, embedding []float32, topK int, filters domain.Filters) ([]*domain.RetrievalResult, error)

	// Delete removes records by ID
	Delete(ctx context.Context, ids []string) error

	// DeleteBySource removes every record for a source
	DeleteBySource(ctx context.Context, sourceID string) error

	// Stats returns the total vector count and the per-source breakdown
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// HealthCheck verifies the store is reachable
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the store
	Close() error
}
