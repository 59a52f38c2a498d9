package driving

import (
	"context"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// IngestResult reports the outcome of one document ingestion.
type IngestResult struct {
	SourceID      string `json:"source_id"`
	ChunksWritten int    `json:"chunks_written"`
	ChunksSkipped int    `json:"chunks_skipped"`
	Degraded      bool   `json:"degraded,omitempty"`
}

// BatchDocument is one input to a batch ingestion call.
type BatchDocument struct {
	SourceID string      `json:"source_id"`
	Text     string      `json:"text"`
	Tags     domain.Tags `json:"tags,omitempty"`
}

// FolderResult reports the outcome of a folder ingestion.
type FolderResult struct {
	FilesProcessed int `json:"files_processed"`
	FilesFailed    int `json:"files_failed"`
}

// IngestionService handles the document write path:
// extract -> chunk -> embed -> upsert.
type IngestionService interface {
	// Ingest chunks, embeds and upserts one document. Re-ingesting the
	// same sourceID overwrites the prior vectors for that source.
	Ingest(ctx context.Context, sourceID, text string, tags domain.Tags) (*IngestResult, error)

	// IngestBatch ingests several documents with an inter-batch delay to
	// respect embedding-provider rate limits. A failing document is
	// logged and skipped; the rest of the batch continues.
	IngestBatch(ctx context.Context, docs []BatchDocument) ([]*IngestResult, error)

	// IngestFolder walks a folder, extracts text from each readable file
	// and ingests it. Runs synchronously; callers wanting background
	// execution enqueue an ingest_folder task instead.
	IngestFolder(ctx context.Context, path string) (*FolderResult, error)

	// DeleteSource removes all vectors and the registry entry for a source
	DeleteSource(ctx context.Context, sourceID string) error

	// Stats returns the vector store contents summary
	Stats(ctx context.Context) (*domain.StoreStats, error)

	// ListSources lists registered sources, newest first
	ListSources(ctx context.Context, limit, offset int) ([]*domain.Source, error)
}
