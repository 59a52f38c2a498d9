package driving

import (
	"context"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// GenerationService orchestrates grounded drafting. Each operation is
// stateless; no session state is retained between calls.
type GenerationService interface {
	// GenerateDraft retrieves grounding passages, assembles context,
	// selects the template for the requested document type and produces
	// a draft with references and improvement suggestions.
	GenerateDraft(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error)

	// Refine rewrites an existing draft per the instructions. Fails loudly
	// when no generation capability is configured: the caller needs the
	// refined text and has no safe default.
	Refine(ctx context.Context, original, instructions string) (string, error)

	// Compare produces a clause-by-clause comparison of two drafts
	Compare(ctx context.Context, a, b string) (string, error)

	// ExtractSections splits a draft into named sections. Advisory: on
	// failure it returns an empty map, never an error from the backend.
	ExtractSections(ctx context.Context, text string) (domain.SectionMap, error)

	// SuggestImprovements returns 1-5 improvement suggestions. Advisory:
	// always returns a non-empty bounded list, falling back to generic
	// suggestions when the backend fails or returns nothing parseable.
	SuggestImprovements(ctx context.Context, text string) ([]string, error)
}
