package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
)

// Ensure retrievalService implements RetrievalService
var _ driving.RetrievalService = (*retrievalService)(nil)

// retrievalService implements the RetrievalService interface
type retrievalService struct {
	store    driven.VectorStore
	fallback driven.FallbackRetriever
	services *runtime.Services // Dynamic AI services
	settings domain.PipelineSettings
	timeout  time.Duration
	logger   *slog.Logger
}

// RetrievalConfig holds dependencies for the retrieval service.
type RetrievalConfig struct {
	Store    driven.VectorStore
	Fallback driven.FallbackRetriever
	Services *runtime.Services
	Settings domain.PipelineSettings
	Timeout  time.Duration
	Logger   *slog.Logger
}

// NewRetrievalService creates a new RetrievalService.
// The embedding service is accessed dynamically via runtime.Services; when
// it is unconfigured, or the vector store is unreachable, searches degrade
// to the built-in fallback corpus instead of failing.
func NewRetrievalService(cfg RetrievalConfig) driving.RetrievalService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &retrievalService{
		store:    cfg.Store,
		fallback: cfg.Fallback,
		services: cfg.Services,
		settings: cfg.Settings,
		timeout:  timeout,
		logger:   logger,
	}
}

// Search embeds the query, runs similarity search and ranks results.
func (s *retrievalService) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	start := time.Now()

	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if opts.TopK < 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidInput, opts.TopK)
	}

	// Apply defaults and cap degenerate requests
	if opts.TopK == 0 {
		opts.TopK = s.settings.TopK
	}
	if opts.TopK > s.settings.MaxTopK {
		opts.TopK = s.settings.MaxTopK
	}
	if opts.Mode == "" {
		opts.Mode = domain.SearchModeConfident
	}

	results, err := s.liveSearch(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	degraded := len(results) > 0 && results[0].Degraded

	return &domain.SearchResponse{
		Query:    query,
		Results:  results,
		Degraded: degraded,
		Took:     time.Since(start),
	}, nil
}

// liveSearch runs the embedding + vector store path, degrading to the
// fallback corpus when either capability is unavailable or fails.
func (s *retrievalService) liveSearch(ctx context.Context, query string, opts domain.SearchOptions) ([]*domain.RetrievalResult, error) {
	embeddingService := s.services.EmbeddingService()
	if embeddingService == nil || !s.services.Config().VectorStoreAvailable() {
		return s.degrade(query, opts.TopK, "retrieval capability not configured"), nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	embedding, err := embeddingService.EmbedQuery(ctx, query)
	if err != nil {
		s.logger.Warn("query embedding failed, serving degraded results", "error", err)
		return s.degrade(query, opts.TopK, err.Error()), nil
	}

	results, err := s.store.Query(ctx, embedding, opts.TopK, opts.Filters)
	if err != nil {
		s.logger.Warn("vector query failed, serving degraded results", "error", err)
		return s.degrade(query, opts.TopK, err.Error()), nil
	}

	// Scores handed to callers are always within [0,1]; clamp whatever
	// the store produced.
	for _, r := range results {
		r.Score = domain.ClampScore(r.Score)
	}

	// Confident mode drops weak matches, but only when the caller has not
	// narrowed the search explicitly.
	if opts.Mode == domain.SearchModeConfident && len(opts.Filters) == 0 {
		results = s.applyThreshold(results)
	}

	return results, nil
}

// degrade serves the built-in corpus, clearly flagged. With no fallback
// wired the caller gets an empty result set, never an error.
func (s *retrievalService) degrade(query string, topK int, reason string) []*domain.RetrievalResult {
	s.logger.Info("retrieval degraded", "reason", reason)
	if s.fallback == nil {
		return nil
	}
	results := s.fallback.Search(query, topK)
	for _, r := range results {
		r.Degraded = true
		r.Score = domain.ClampScore(r.Score)
	}
	return results
}

func (s *retrievalService) applyThreshold(results []*domain.RetrievalResult) []*domain.RetrievalResult {
	filtered := results[:0]
	for _, r := range results {
		if r.Score >= s.settings.MinScore {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
