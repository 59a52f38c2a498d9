package services

import (
	"fmt"
	"strings"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// EmptyContextSentinel is injected when retrieval produced nothing.
// Generation prompts must never receive a blank context section: a silently
// empty block changes model behaviour in ways that are hard to debug.
const EmptyContextSentinel = "No prior examples were found in the reference library. " +
	"Rely on standard structure and domain defaults for this document type."

// ContextAssembler converts ranked retrieval results into a bounded-length
// context block for a generation prompt.
type ContextAssembler struct {
	maxCharsPerResult int
	maxResults        int
}

// NewContextAssembler creates an assembler with the given budgets.
func NewContextAssembler(settings domain.PipelineSettings) *ContextAssembler {
	maxChars := settings.ContextMaxChars
	if maxChars <= 0 {
		maxChars = 800
	}
	maxResults := settings.ContextMaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	return &ContextAssembler{
		maxCharsPerResult: maxChars,
		maxResults:        maxResults,
	}
}

// Assemble renders results in relevance order, each truncated and headed by
// its source and relevance percentage. An empty input yields the sentinel.
func (a *ContextAssembler) Assemble(results []*domain.RetrievalResult) string {
	if len(results) == 0 {
		return EmptyContextSentinel
	}

	bounded := results
	if len(bounded) > a.maxResults {
		bounded = bounded[:a.maxResults]
	}

	var b strings.Builder
	for i, r := range bounded {
		text := r.Text
		if len(text) > a.maxCharsPerResult {
			text = text[:a.maxCharsPerResult] + "..."
		}

		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Reference %d | %s | relevance %.0f%%]\n%s", i+1, r.SourceID, r.Score*100, text)
	}
	return b.String()
}
