package domain

import "time"

// RetrievalResult is a ranked match for a query. Constructed per query,
// never persisted. Score is cosine similarity normalised to [0,1].
type RetrievalResult struct {
	ID       string  `json:"id"`
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
	Tags     Tags    `json:"tags,omitempty"`

	// Degraded marks results served from the built-in fallback corpus
	// when the vector store is unavailable.
	Degraded bool `json:"degraded,omitempty"`
}

// SearchMode selects how retrieval filters results.
type SearchMode string

const (
	// SearchModeConfident drops results below the minimum relevance
	// threshold. Default for user-facing search.
	SearchModeConfident SearchMode = "confident"

	// SearchModeRaw returns the unfiltered top-k. Used for generation
	// context building, where low-relevance fallback content still helps.
	SearchModeRaw SearchMode = "raw"
)

// SearchOptions configures a retrieval call.
type SearchOptions struct {
	Mode    SearchMode `json:"mode"`
	TopK    int        `json:"top_k"`
	Filters Filters    `json:"filters,omitempty"`
}

// Filters are exact-match predicates over chunk tags. A value list means
// set membership.
type Filters map[string][]string

// Matches reports whether the given tags satisfy every filter predicate.
func (f Filters) Matches(tags Tags) bool {
	for key, allowed := range f {
		if len(allowed) == 0 {
			continue
		}
		value, ok := tags[key]
		if !ok {
			return false
		}
		found := false
		for _, a := range allowed {
			if a == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// SearchResponse wraps ranked results with query echo and timing.
type SearchResponse struct {
	Query    string             `json:"query"`
	Results  []*RetrievalResult `json:"results"`
	Degraded bool               `json:"degraded"`
	Took     time.Duration      `json:"took" swaggertype:"integer"`
}

// ClampScore forces a raw similarity value into [0,1]. Vector stores can
// return cosine similarity in [-1,1] or slightly outside due to float error.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
