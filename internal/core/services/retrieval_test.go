package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven/mocks"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
)

// createTestServices creates runtime services for testing. A non-nil
// embedding service also marks the vector store reachable.
func createTestServices(embeddingService *mocks.MockEmbeddingService) *runtime.Services {
	config := domain.NewRuntimeConfig("mock", "mock")
	services := runtime.NewServices(config)
	if embeddingService != nil {
		services.SetEmbeddingService(embeddingService)
		config.SetVectorStoreAvailable(true)
	}
	return services
}

// stubFallback serves canned results by substring match
type stubFallback struct {
	corpus []*domain.RetrievalResult
}

func (f *stubFallback) Search(query string, topK int) []*domain.RetrievalResult {
	var results []*domain.RetrievalResult
	for _, r := range f.corpus {
		if strings.Contains(strings.ToLower(r.Text), strings.ToLower(query)) {
			copied := *r
			results = append(results, &copied)
		}
		if topK > 0 && len(results) == topK {
			break
		}
	}
	return results
}

func seedStore(t *testing.T, store *mocks.MockVectorStore, embedding *mocks.MockEmbeddingService, sourceID string, texts ...string) {
	t.Helper()
	for i, text := range texts {
		vec, err := embedding.EmbedQuery(context.Background(), text)
		if err != nil {
			t.Fatalf("seed embedding failed: %v", err)
		}
		record := domain.NewVectorRecord(&domain.Chunk{
			ID:         domain.ChunkID(sourceID, i),
			SourceID:   sourceID,
			Text:       text,
			ChunkIndex: i,
			Tags:       domain.Tags{domain.TagCategory: "leases"},
		}, vec)
		if err := store.Upsert(context.Background(), []*domain.VectorRecord{record}); err != nil {
			t.Fatalf("seed upsert failed: %v", err)
		}
	}
}

func TestRetrievalService_Search(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	runtimeServices := createTestServices(embedding)
	svc := NewRetrievalService(RetrievalConfig{
		Store:    store,
		Services: runtimeServices,
		Settings: domain.DefaultPipelineSettings(),
	})

	seedStore(t, store, embedding,
		"leases/flat.txt",
		"residential lease agreement for an apartment",
		"notice of termination of tenancy",
		"affidavit of residence for court filing",
	)

	// Identical text embeds identically, so the exact match ranks first
	// with a perfect score.
	response, err := svc.Search(context.Background(), "residential lease agreement for an apartment", domain.SearchOptions{
		Mode: domain.SearchModeRaw,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Query != "residential lease agreement for an apartment" {
		t.Errorf("query echo mismatch: %s", response.Query)
	}
	if len(response.Results) != 3 {
		t.Fatalf("expected 3 raw results, got %d", len(response.Results))
	}
	if response.Results[0].Score < 0.99 {
		t.Errorf("exact match should score ~1.0, got %f", response.Results[0].Score)
	}
	if response.Degraded {
		t.Error("live search must not be flagged degraded")
	}
	for _, r := range response.Results {
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("score %f outside [0,1]", r.Score)
		}
	}
}

func TestRetrievalService_Search_InvalidInput(t *testing.T) {
	svc := NewRetrievalService(RetrievalConfig{
		Store:    mocks.NewMockVectorStore(),
		Services: createTestServices(mocks.NewMockEmbeddingService()),
		Settings: domain.DefaultPipelineSettings(),
	})

	if _, err := svc.Search(context.Background(), "   ", domain.SearchOptions{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("blank query: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "lease", domain.SearchOptions{TopK: -3}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("negative top_k: expected ErrInvalidInput, got %v", err)
	}
}

func TestRetrievalService_Search_TopKCap(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	settings := domain.DefaultPipelineSettings()
	settings.MaxTopK = 2
	svc := NewRetrievalService(RetrievalConfig{
		Store:    store,
		Services: createTestServices(embedding),
		Settings: settings,
	})

	seedStore(t, store, embedding, "src", "alpha clause", "beta clause", "gamma clause", "delta clause")

	response, err := svc.Search(context.Background(), "clause text", domain.SearchOptions{
		Mode: domain.SearchModeRaw,
		TopK: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) > 2 {
		t.Errorf("top_k cap ignored: got %d results", len(response.Results))
	}
}

func TestRetrievalService_Search_ConfidentThreshold(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	settings := domain.DefaultPipelineSettings()
	settings.MinScore = 0.99
	svc := NewRetrievalService(RetrievalConfig{
		Store:    store,
		Services: createTestServices(embedding),
		Settings: settings,
	})

	seedStore(t, store, embedding, "src",
		"indemnification clause template",
		"completely unrelated gardening notes",
	)

	// Confident mode keeps only the exact match.
	response, err := svc.Search(context.Background(), "indemnification clause template", domain.SearchOptions{
		Mode: domain.SearchModeConfident,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 1 {
		t.Fatalf("expected 1 confident result, got %d", len(response.Results))
	}

	// Raw mode returns everything.
	response, err = svc.Search(context.Background(), "indemnification clause template", domain.SearchOptions{
		Mode: domain.SearchModeRaw,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 2 {
		t.Errorf("expected 2 raw results, got %d", len(response.Results))
	}
}

func TestRetrievalService_Search_FiltersBypassThreshold(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	settings := domain.DefaultPipelineSettings()
	settings.MinScore = 0.99
	svc := NewRetrievalService(RetrievalConfig{
		Store:    store,
		Services: createTestServices(embedding),
		Settings: settings,
	})

	seedStore(t, store, embedding, "src", "lease deposit clause", "lease renewal clause")

	// Explicit filters mean the caller narrowed the search deliberately;
	// weak matches still come back.
	response, err := svc.Search(context.Background(), "something only loosely related", domain.SearchOptions{
		Mode:    domain.SearchModeConfident,
		Filters: domain.Filters{domain.TagCategory: {"leases"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 2 {
		t.Errorf("filtered search should skip the threshold, got %d results", len(response.Results))
	}
}

func TestRetrievalService_Search_DegradedNoEmbedding(t *testing.T) {
	fallback := &stubFallback{corpus: []*domain.RetrievalResult{
		{ID: "builtin-1", SourceID: "builtin", Text: "standard lease agreement template", Score: 0.5},
	}}
	svc := NewRetrievalService(RetrievalConfig{
		Store:    mocks.NewMockVectorStore(),
		Fallback: fallback,
		Services: createTestServices(nil),
		Settings: domain.DefaultPipelineSettings(),
	})

	response, err := svc.Search(context.Background(), "lease", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("degraded search must not error: %v", err)
	}
	if !response.Degraded {
		t.Error("response should be flagged degraded")
	}
	for _, r := range response.Results {
		if !r.Degraded {
			t.Errorf("fallback result %s not flagged degraded", r.ID)
		}
	}
}

func TestRetrievalService_Search_DegradedOnStoreFailure(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	fallback := &stubFallback{corpus: []*domain.RetrievalResult{
		{ID: "builtin-1", SourceID: "builtin", Text: "notice of eviction template", Score: 0.5},
	}}
	svc := NewRetrievalService(RetrievalConfig{
		Store:    store,
		Fallback: fallback,
		Services: createTestServices(embedding),
		Settings: domain.DefaultPipelineSettings(),
	})

	store.SetFailNext(true)

	response, err := svc.Search(context.Background(), "eviction", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("store failure must degrade, not error: %v", err)
	}
	if !response.Degraded {
		t.Error("response should be flagged degraded after store failure")
	}
}

func TestRetrievalService_Search_DegradedNoFallback(t *testing.T) {
	svc := NewRetrievalService(RetrievalConfig{
		Store:    mocks.NewMockVectorStore(),
		Services: createTestServices(nil),
		Settings: domain.DefaultPipelineSettings(),
	})

	response, err := svc.Search(context.Background(), "lease", domain.SearchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(response.Results) != 0 {
		t.Errorf("no fallback wired: expected empty results, got %d", len(response.Results))
	}
}
