package driving

import (
	"context"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// RetrievalService handles the read path: embed the query, run similarity
// search, rank and threshold.
type RetrievalService interface {
	// Search returns ranked results for the query, highest score first.
	// Confident mode drops results under the relevance threshold; raw
	// mode returns the unfiltered top-k.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}
