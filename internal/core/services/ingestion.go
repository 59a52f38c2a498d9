package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexcraft-labs/lexcraft-core/internal/chunker"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
)

// Ensure ingestionService implements IngestionService
var _ driving.IngestionService = (*ingestionService)(nil)

// ingestionService coordinates the document write path:
//  1. Chunk the text
//  2. Derive deterministic chunk IDs
//  3. Embed chunks in bounded batches
//  4. Upsert vector records
//  5. Update the source registry
//
// Re-ingesting a source overwrites its vectors because chunk IDs are
// deterministic; stale trailing chunks from a longer prior version are
// removed explicitly before the upsert.
type ingestionService struct {
	chunker     *chunker.Chunker
	store       driven.VectorStore
	sourceStore driven.SourceStore
	extractors  driven.ExtractorRegistry
	services    *runtime.Services
	settings    domain.PipelineSettings
	timeout     time.Duration
	logger      *slog.Logger
}

// IngestionConfig holds dependencies for the ingestion service.
type IngestionConfig struct {
	Chunker     *chunker.Chunker
	Store       driven.VectorStore
	SourceStore driven.SourceStore
	Extractors  driven.ExtractorRegistry
	Services    *runtime.Services
	Settings    domain.PipelineSettings
	Timeout     time.Duration
	Logger      *slog.Logger
}

// NewIngestionService creates a new IngestionService.
func NewIngestionService(cfg IngestionConfig) driving.IngestionService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ingestionService{
		chunker:     cfg.Chunker,
		store:       cfg.Store,
		sourceStore: cfg.SourceStore,
		extractors:  cfg.Extractors,
		services:    cfg.Services,
		settings:    cfg.Settings,
		timeout:     timeout,
		logger:      logger,
	}
}

// Ingest chunks, embeds and upserts one document.
func (s *ingestionService) Ingest(ctx context.Context, sourceID, text string, tags domain.Tags) (*driving.IngestResult, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, fmt.Errorf("%w: source_id must not be empty", domain.ErrInvalidInput)
	}

	start := time.Now()
	segments := s.chunker.Split(text)

	embeddingService := s.services.EmbeddingService()
	if embeddingService == nil || !s.services.Config().VectorStoreAvailable() {
		// Degraded mode: nothing to embed into. Logged, not fatal, so a
		// batch caller keeps going.
		s.logger.Warn("ingestion skipped, no embedding service or vector store",
			"source_id", sourceID,
			"chunks", len(segments),
		)
		return &driving.IngestResult{
			SourceID:      sourceID,
			ChunksSkipped: len(segments),
			Degraded:      true,
		}, nil
	}

	now := time.Now()
	chunks := make([]*domain.Chunk, 0, len(segments))
	for i, segment := range segments {
		chunks = append(chunks, &domain.Chunk{
			ID:         domain.ChunkID(sourceID, i),
			SourceID:   sourceID,
			Text:       segment,
			ChunkIndex: i,
			ChunkCount: len(segments),
			Tags:       tags.Clone(),
			CreatedAt:  now,
		})
	}

	written, skipped := s.embedAndUpsert(ctx, chunks, embeddingService)

	// A shorter re-ingestion leaves stale trailing chunks behind; the
	// deterministic IDs only overwrite indexes that still exist. Clear
	// anything past the new chunk count.
	if prior, err := s.sourceStore.Get(ctx, sourceID); err == nil && prior.ChunkCount > len(chunks) {
		stale := make([]string, 0, prior.ChunkCount-len(chunks))
		for i := len(chunks); i < prior.ChunkCount; i++ {
			stale = append(stale, domain.ChunkID(sourceID, i))
		}
		if err := s.store.Delete(ctx, stale); err != nil {
			s.logger.Warn("failed to delete stale chunks", "source_id", sourceID, "error", err)
		}
	}

	source := &domain.Source{
		ID:         sourceID,
		Title:      titleFromSourceID(sourceID),
		Tags:       tags.Clone(),
		ChunkCount: len(chunks),
		IngestedAt: now,
	}
	if err := s.sourceStore.Save(ctx, source); err != nil {
		s.logger.Warn("failed to update source registry", "source_id", sourceID, "error", err)
	}

	s.logger.Info("ingestion completed",
		"source_id", sourceID,
		"chunks_written", written,
		"chunks_skipped", skipped,
		"duration_seconds", time.Since(start).Seconds(),
	)

	return &driving.IngestResult{
		SourceID:      sourceID,
		ChunksWritten: written,
		ChunksSkipped: skipped,
	}, nil
}

// embedAndUpsert processes chunks in fixed-size batches. The whole batch is
// embedded with one provider call; if that fails the batch falls back to
// per-chunk embedding so a single bad input is skipped, not the batch.
func (s *ingestionService) embedAndUpsert(ctx context.Context, chunks []*domain.Chunk, embeddingService driven.EmbeddingService) (written, skipped int) {
	batchSize := s.settings.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 20
	}

	for batchStart := 0; batchStart < len(chunks); batchStart += batchSize {
		batchEnd := batchStart + batchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}
		batch := chunks[batchStart:batchEnd]

		records := s.embedBatch(ctx, batch, embeddingService)
		skipped += len(batch) - len(records)

		if len(records) == 0 {
			continue
		}

		upsertCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.store.Upsert(upsertCtx, records)
		cancel()
		if err != nil {
			s.logger.Warn("batch upsert failed",
				"source_id", batch[0].SourceID,
				"batch_size", len(records),
				"error", err,
			)
			skipped += len(records)
			continue
		}
		written += len(records)
	}

	return written, skipped
}

// embedBatch returns vector records for every chunk that embedded cleanly.
func (s *ingestionService) embedBatch(ctx context.Context, batch []*domain.Chunk, embeddingService driven.EmbeddingService) []*domain.VectorRecord {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.timeout)
	embeddings, err := embeddingService.Embed(embedCtx, texts)
	cancel()

	if err == nil && len(embeddings) == len(batch) {
		records := make([]*domain.VectorRecord, 0, len(batch))
		for i, c := range batch {
			if len(embeddings[i]) == 0 {
				s.logger.Warn("empty embedding, skipping chunk", "chunk_id", c.ID)
				continue
			}
			records = append(records, domain.NewVectorRecord(c, embeddings[i]))
		}
		return records
	}

	s.logger.Warn("batch embedding failed, retrying per chunk", "error", err)

	// Per-chunk fallback: skip the chunks that fail, keep the rest.
	var records []*domain.VectorRecord
	for _, c := range batch {
		chunkCtx, cancel := context.WithTimeout(ctx, s.timeout)
		embedding, err := embeddingService.EmbedQuery(chunkCtx, c.Text)
		cancel()
		if err != nil {
			s.logger.Warn("failed to embed chunk, skipping", "chunk_id", c.ID, "error", err)
			continue
		}
		records = append(records, domain.NewVectorRecord(c, embedding))
	}
	return records
}

// IngestBatch ingests documents sequentially with an inter-batch delay so
// full-corpus loads respect embedding-provider rate limits.
func (s *ingestionService) IngestBatch(ctx context.Context, docs []driving.BatchDocument) ([]*driving.IngestResult, error) {
	results := make([]*driving.IngestResult, 0, len(docs))

	for i, doc := range docs {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		result, err := s.Ingest(ctx, doc.SourceID, doc.Text, doc.Tags)
		if err != nil {
			// Skip-and-continue: one malformed document must not abort
			// a corpus load.
			s.logger.Warn("batch document failed, continuing", "source_id", doc.SourceID, "error", err)
			results = append(results, &driving.IngestResult{SourceID: doc.SourceID})
			continue
		}
		results = append(results, result)

		if i < len(docs)-1 && s.settings.BatchDelay > 0 {
			select {
			case <-ctx.Done():
				return results, ctx.Err()
			case <-time.After(s.settings.BatchDelay):
			}
		}
	}

	return results, nil
}

// IngestFolder walks a folder and ingests every readable file. The file
// path relative to the folder becomes the source ID; the extension picks
// the text extractor.
func (s *ingestionService) IngestFolder(ctx context.Context, path string) (*driving.FolderResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: folder %s: %v", domain.ErrInvalidInput, path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, path)
	}

	result := &driving.FolderResult{}

	walkErr := filepath.WalkDir(path, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		extractor := s.extractors.Get(filePath)
		text, err := extractor.Extract(ctx, filePath)
		if err != nil {
			s.logger.Warn("extraction failed, skipping file", "path", filePath, "error", err)
			result.FilesFailed++
			return nil
		}

		sourceID, relErr := filepath.Rel(path, filePath)
		if relErr != nil {
			sourceID = filepath.Base(filePath)
		}

		if _, err := s.Ingest(ctx, sourceID, text, domain.Tags{
			domain.TagCategory: categoryFromPath(filePath),
		}); err != nil {
			s.logger.Warn("ingestion failed, skipping file", "path", filePath, "error", err)
			result.FilesFailed++
			return nil
		}

		result.FilesProcessed++
		return nil
	})
	if walkErr != nil {
		return result, walkErr
	}

	s.logger.Info("folder ingestion completed",
		"path", path,
		"files_processed", result.FilesProcessed,
		"files_failed", result.FilesFailed,
	)
	return result, nil
}

// DeleteSource removes all vectors and the registry entry for a source.
func (s *ingestionService) DeleteSource(ctx context.Context, sourceID string) error {
	if strings.TrimSpace(sourceID) == "" {
		return fmt.Errorf("%w: source_id must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.DeleteBySource(ctx, sourceID); err != nil {
		return fmt.Errorf("%w: delete vectors for %s: %v", domain.ErrDependencyFailed, sourceID, err)
	}

	if err := s.sourceStore.Delete(ctx, sourceID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("failed to delete source registry entry", "source_id", sourceID, "error", err)
	}
	return nil
}

// Stats returns the vector store contents summary.
func (s *ingestionService) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: store stats: %v", domain.ErrDependencyFailed, err)
	}
	return stats, nil
}

// ListSources lists registered sources, newest first.
func (s *ingestionService) ListSources(ctx context.Context, limit, offset int) ([]*domain.Source, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.sourceStore.List(ctx, limit, offset)
}

// titleFromSourceID turns "leases/mumbai-flat.pdf" into "mumbai-flat".
func titleFromSourceID(sourceID string) string {
	base := filepath.Base(sourceID)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// categoryFromPath uses the parent directory name as a coarse category tag.
func categoryFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return "general"
	}
	return dir
}
