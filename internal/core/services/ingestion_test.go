package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexcraft-labs/lexcraft-core/internal/chunker"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven/mocks"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
)

// stubRegistry returns the same extractor for every path
type stubRegistry struct {
	extractor driven.TextExtractor
}

func (r *stubRegistry) Get(path string) driven.TextExtractor { return r.extractor }

func (r *stubRegistry) Register(extractor driven.TextExtractor) {}

func (r *stubRegistry) List() []string { return r.extractor.SupportedExtensions() }

func newTestIngestion(t *testing.T, store *mocks.MockVectorStore, sources *mocks.MockSourceStore, embedding *mocks.MockEmbeddingService, settings domain.PipelineSettings) *ingestionService {
	t.Helper()
	ch, err := chunker.New(chunker.Config{Size: settings.ChunkSize, Overlap: settings.ChunkOverlap})
	if err != nil {
		t.Fatalf("chunker config invalid: %v", err)
	}
	return NewIngestionService(IngestionConfig{
		Chunker:     ch,
		Store:       store,
		SourceStore: sources,
		Extractors:  &stubRegistry{extractor: mocks.NewMockExtractor(".txt")},
		Services:    createTestServices(embedding),
		Settings:    settings,
	}).(*ingestionService)
}

func testSettings() domain.PipelineSettings {
	settings := domain.DefaultPipelineSettings()
	settings.ChunkSize = 40
	settings.ChunkOverlap = 10
	settings.EmbedBatchSize = 3
	settings.BatchDelay = 0
	return settings
}

func TestIngestionService_Ingest(t *testing.T) {
	store := mocks.NewMockVectorStore()
	sources := mocks.NewMockSourceStore()
	embedding := mocks.NewMockEmbeddingService()
	svc := newTestIngestion(t, store, sources, embedding, testSettings())

	text := strings.Repeat("lease clause text ", 20)
	result, err := svc.Ingest(context.Background(), "leases/flat.txt", text, domain.Tags{
		domain.TagCategory: "leases",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChunksWritten == 0 {
		t.Fatal("expected chunks to be written")
	}
	if result.ChunksSkipped != 0 {
		t.Errorf("expected no skipped chunks, got %d", result.ChunksSkipped)
	}
	if result.Degraded {
		t.Error("live ingestion must not be degraded")
	}
	if store.Count() != result.ChunksWritten {
		t.Errorf("store holds %d vectors, result says %d", store.Count(), result.ChunksWritten)
	}

	// First chunk is addressable by its deterministic ID and carries tags.
	record := store.Get(domain.ChunkID("leases/flat.txt", 0))
	if record == nil {
		t.Fatal("chunk 0 not found under deterministic ID")
	}
	if record.Payload.Tags[domain.TagCategory] != "leases" {
		t.Errorf("tags not carried into payload: %v", record.Payload.Tags)
	}

	// Source registry updated.
	source, err := sources.Get(context.Background(), "leases/flat.txt")
	if err != nil {
		t.Fatalf("source not registered: %v", err)
	}
	if source.ChunkCount != result.ChunksWritten {
		t.Errorf("source chunk count %d, want %d", source.ChunkCount, result.ChunksWritten)
	}
	if source.Title != "flat" {
		t.Errorf("derived title %q, want %q", source.Title, "flat")
	}
}

func TestIngestionService_Ingest_Idempotent(t *testing.T) {
	store := mocks.NewMockVectorStore()
	sources := mocks.NewMockSourceStore()
	embedding := mocks.NewMockEmbeddingService()
	svc := newTestIngestion(t, store, sources, embedding, testSettings())

	text := strings.Repeat("identical content ", 15)
	first, err := svc.Ingest(context.Background(), "doc.txt", text, nil)
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := svc.Ingest(context.Background(), "doc.txt", text, nil)
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}

	if first.ChunksWritten != second.ChunksWritten {
		t.Errorf("re-ingestion wrote %d chunks, first wrote %d", second.ChunksWritten, first.ChunksWritten)
	}
	if store.Count() != first.ChunksWritten {
		t.Errorf("re-ingestion duplicated vectors: store holds %d, want %d", store.Count(), first.ChunksWritten)
	}
}

func TestIngestionService_Ingest_ShorterReplacementDropsStaleChunks(t *testing.T) {
	store := mocks.NewMockVectorStore()
	sources := mocks.NewMockSourceStore()
	embedding := mocks.NewMockEmbeddingService()
	svc := newTestIngestion(t, store, sources, embedding, testSettings())

	long := strings.Repeat("original long version ", 30)
	if _, err := svc.Ingest(context.Background(), "doc.txt", long, nil); err != nil {
		t.Fatalf("long ingest failed: %v", err)
	}

	short := "much shorter replacement"
	result, err := svc.Ingest(context.Background(), "doc.txt", short, nil)
	if err != nil {
		t.Fatalf("short ingest failed: %v", err)
	}

	if store.Count() != result.ChunksWritten {
		t.Errorf("stale chunks survived: store holds %d, want %d", store.Count(), result.ChunksWritten)
	}
}

func TestIngestionService_Ingest_EmptySourceID(t *testing.T) {
	svc := newTestIngestion(t, mocks.NewMockVectorStore(), mocks.NewMockSourceStore(), mocks.NewMockEmbeddingService(), testSettings())

	if _, err := svc.Ingest(context.Background(), "  ", "text", nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestionService_Ingest_Degraded(t *testing.T) {
	store := mocks.NewMockVectorStore()
	svc := newTestIngestion(t, store, mocks.NewMockSourceStore(), nil, testSettings())

	result, err := svc.Ingest(context.Background(), "doc.txt", "some lease text that will not be embedded", nil)
	if err != nil {
		t.Fatalf("degraded ingest must not error: %v", err)
	}
	if !result.Degraded {
		t.Error("result should be flagged degraded")
	}
	if result.ChunksWritten != 0 {
		t.Errorf("degraded ingest wrote %d chunks", result.ChunksWritten)
	}
	if result.ChunksSkipped == 0 {
		t.Error("degraded ingest should report skipped chunks")
	}
	if store.Count() != 0 {
		t.Errorf("degraded ingest reached the store: %d vectors", store.Count())
	}
}

func TestIngestionService_Ingest_PerChunkFallback(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	svc := newTestIngestion(t, store, mocks.NewMockSourceStore(), embedding, testSettings())

	// First call (the batch embed) fails; the per-chunk retries succeed.
	embedding.SetFailNext(true)

	text := strings.Repeat("clause ", 20)
	result, err := svc.Ingest(context.Background(), "doc.txt", text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChunksWritten == 0 {
		t.Error("per-chunk fallback should still write chunks")
	}
}

func TestIngestionService_IngestBatch_SkipAndContinue(t *testing.T) {
	store := mocks.NewMockVectorStore()
	embedding := mocks.NewMockEmbeddingService()
	svc := newTestIngestion(t, store, mocks.NewMockSourceStore(), embedding, testSettings())

	docs := []driving.BatchDocument{
		{SourceID: "a.txt", Text: "first document lease content"},
		{SourceID: "", Text: "missing source id"},
		{SourceID: "c.txt", Text: "third document notice content"},
	}

	results, err := svc.IngestBatch(context.Background(), docs)
	if err != nil {
		t.Fatalf("batch must not abort on one bad document: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].ChunksWritten == 0 || results[2].ChunksWritten == 0 {
		t.Error("valid documents should have been ingested")
	}
	if results[1].ChunksWritten != 0 {
		t.Error("invalid document should have written nothing")
	}
}

func TestIngestionService_IngestFolder(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "leases"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"leases/flat.txt": "residential lease agreement content",
		"notice.txt":      "termination notice content",
		".hidden":         "should be skipped",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := mocks.NewMockVectorStore()
	sources := mocks.NewMockSourceStore()
	svc := newTestIngestion(t, store, sources, mocks.NewMockEmbeddingService(), testSettings())

	result, err := svc.IngestFolder(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilesProcessed != 2 {
		t.Errorf("expected 2 files processed, got %d", result.FilesProcessed)
	}
	if result.FilesFailed != 0 {
		t.Errorf("expected 0 failures, got %d", result.FilesFailed)
	}

	// Relative path is the source ID; parent dir is the category tag.
	source, err := sources.Get(context.Background(), filepath.Join("leases", "flat.txt"))
	if err != nil {
		t.Fatalf("nested file not registered: %v", err)
	}
	if source.Tags[domain.TagCategory] != "leases" {
		t.Errorf("category tag %q, want %q", source.Tags[domain.TagCategory], "leases")
	}
}

func TestIngestionService_IngestFolder_NotADirectory(t *testing.T) {
	svc := newTestIngestion(t, mocks.NewMockVectorStore(), mocks.NewMockSourceStore(), mocks.NewMockEmbeddingService(), testSettings())

	if _, err := svc.IngestFolder(context.Background(), "/nonexistent/path"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestIngestionService_DeleteSource(t *testing.T) {
	store := mocks.NewMockVectorStore()
	sources := mocks.NewMockSourceStore()
	svc := newTestIngestion(t, store, sources, mocks.NewMockEmbeddingService(), testSettings())

	if _, err := svc.Ingest(context.Background(), "doc.txt", "content to delete later", nil); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	if err := svc.DeleteSource(context.Background(), "doc.txt"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if store.Count() != 0 {
		t.Errorf("vectors survived deletion: %d", store.Count())
	}
	if _, err := sources.Get(context.Background(), "doc.txt"); !errors.Is(err, domain.ErrNotFound) {
		t.Error("registry entry survived deletion")
	}

	// Deleting an unknown source is not an error.
	if err := svc.DeleteSource(context.Background(), "never-ingested.txt"); err != nil {
		t.Errorf("deleting unknown source: %v", err)
	}
}

func TestIngestionService_Stats(t *testing.T) {
	store := mocks.NewMockVectorStore()
	svc := newTestIngestion(t, store, mocks.NewMockSourceStore(), mocks.NewMockEmbeddingService(), testSettings())

	if _, err := svc.Ingest(context.Background(), "a.txt", strings.Repeat("alpha ", 20), nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Ingest(context.Background(), "b.txt", "beta", nil); err != nil {
		t.Fatal(err)
	}

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalVectors != store.Count() {
		t.Errorf("stats report %d vectors, store holds %d", stats.TotalVectors, store.Count())
	}
	if len(stats.PerSource) != 2 {
		t.Errorf("expected 2 sources in stats, got %d", len(stats.PerSource))
	}
}
