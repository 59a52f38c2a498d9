package driven

import (
	"context"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// SourceStore persists the registry of ingested sources. The registry lives
// in the relational store so listings and stats survive vector-store resets.
type SourceStore interface {
	// Save creates or replaces a source record
	Save(ctx context.Context, source *domain.Source) error

	// Get retrieves a source by ID
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List retrieves all sources ordered by ingestion time, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.Source, error)

	// Delete removes a source record
	Delete(ctx context.Context, id string) error

	// Count returns the total number of sources
	Count(ctx context.Context) (int, error)
}
