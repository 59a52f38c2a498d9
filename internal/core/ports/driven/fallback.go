package driven

import (
	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// FallbackRetriever serves deterministic, clearly-flagged results when the
// live retrieval path (embedding service + vector store) is unavailable.
// Implementations match by naive substring, not similarity; every result
// carries Degraded=true.
type FallbackRetriever interface {
	// Search returns up to topK built-in results matching the query
	Search(query string, topK int) []*domain.RetrievalResult
}
