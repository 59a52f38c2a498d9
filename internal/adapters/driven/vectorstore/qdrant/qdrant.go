// Package qdrant implements the vector store port against Qdrant's REST API.
// Filters map to Qdrant payload match conditions; deletes by source use a
// payload filter so no client-side ID bookkeeping is needed.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// Ensure Store implements VectorStore
var _ driven.VectorStore = (*Store)(nil)

// Store is a REST client to a Qdrant collection with cosine distance.
type Store struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

// Config configures the Qdrant store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Qdrant-backed vector store.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "lexcraft"
	}
	return &Store{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist. Qdrant
// answers 200 for an existing collection with the same schema.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", domain.ErrInvalidInput, dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
}

// Upsert writes records, replacing any with the same ID.
func (s *Store) Upsert(ctx context.Context, records []*domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]map[string]any, len(records))
	for i, r := range records {
		points[i] = map[string]any{
			"id":     r.ID,
			"vector": r.Embedding,
			"payload": map[string]any{
				"source_id":   r.Payload.SourceID,
				"text":        r.Payload.Text,
				"chunk_index": r.Payload.ChunkIndex,
				"chunk_count": r.Payload.ChunkCount,
				"tags":        r.Payload.Tags,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil)
}

// Query returns the topK nearest records, optionally filtered by tags.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, filters domain.Filters) ([]*domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}

	req := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}
	if len(filters) > 0 {
		req["filter"] = tagFilter(filters)
	}

	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	results := make([]*domain.RetrievalResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		result := &domain.RetrievalResult{
			ID:    r.ID,
			Score: r.Score,
		}
		if v, ok := r.Payload["source_id"].(string); ok {
			result.SourceID = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			result.Text = v
		}
		if raw, ok := r.Payload["tags"].(map[string]any); ok {
			tags := make(domain.Tags, len(raw))
			for k, v := range raw {
				if sv, ok := v.(string); ok {
					tags[k] = sv
				}
			}
			result.Tags = tags
		}
		results = append(results, result)
	}
	return results, nil
}

// Delete removes records by ID.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string]any{"points": ids}
	return s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil)
}

// DeleteBySource removes every record for a source via a payload filter.
func (s *Store) DeleteBySource(ctx context.Context, sourceID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "source_id", "match": map[string]any{"value": sourceID}},
			},
		},
	}
	return s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil)
}

// Stats counts vectors overall and per source. The per-source breakdown
// scrolls payloads, so it is proportional to collection size.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &countResp); err != nil {
		return nil, err
	}

	stats := &domain.StoreStats{
		TotalVectors: countResp.Result.Count,
		PerSource:    make(map[string]int),
	}

	var offset any
	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": []string{"source_id"},
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}

		var scrollResp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/scroll"), req, &scrollResp); err != nil {
			return nil, err
		}

		for _, p := range scrollResp.Result.Points {
			if v, ok := p.Payload["source_id"].(string); ok {
				stats.PerSource[v]++
			}
		}

		if scrollResp.Result.NextPageOffset == nil {
			break
		}
		offset = scrollResp.Result.NextPageOffset
	}

	return stats, nil
}

// HealthCheck verifies the collection is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
}

// Close releases HTTP resources.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// tagFilter translates exact-match tag filters into Qdrant match conditions.
func tagFilter(filters domain.Filters) map[string]any {
	var must []map[string]any
	for key, allowed := range filters {
		if len(allowed) == 0 {
			continue
		}
		field := "tags." + key
		if len(allowed) == 1 {
			must = append(must, map[string]any{
				"key": field, "match": map[string]any{"value": allowed[0]},
			})
		} else {
			must = append(must, map[string]any{
				"key": field, "match": map[string]any{"any": allowed},
			})
		}
	}
	return map[string]any{"must": must}
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.baseURL, s.collection, suffix)
}

// do runs one JSON request against the Qdrant API.
func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: qdrant request: %v", domain.ErrDependencyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: qdrant %s %s returned %s", domain.ErrDependencyFailed, method, url, resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
