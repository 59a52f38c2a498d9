// Package chromem implements the vector store port on chromem-go, an
// embedded pure-Go vector database. It is the zero-infrastructure backend:
// no server, optional persistence to a local directory.
package chromem

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// Ensure Store implements VectorStore
var _ driven.VectorStore = (*Store)(nil)

// Metadata keys reserved by the adapter. Chunk tags are stored under a
// prefix so they cannot collide with these.
const (
	metaSourceID   = "source_id"
	metaChunkIndex = "chunk_index"
	metaChunkCount = "chunk_count"
	tagPrefix      = "tag."
)

// Store wraps one chromem-go collection.
type Store struct {
	db         *chromemgo.DB
	collection *chromemgo.Collection

	// chromem-go does not enumerate documents, so per-source counts are
	// tracked by the adapter. Counts reset on restart of a persistent DB.
	mu        sync.RWMutex
	perSource map[string]map[string]struct{}
}

// Config configures the chromem store.
type Config struct {
	// Path is the persistence directory. Empty means in-memory only.
	Path string

	// Collection is the collection name.
	Collection string
}

// New creates a chromem-backed vector store.
func New(cfg Config) (*Store, error) {
	var db *chromemgo.DB
	var err error
	if cfg.Path == "" {
		db = chromemgo.NewDB()
	} else {
		db, err = chromemgo.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem db: %w", err)
		}
	}

	name := cfg.Collection
	if name == "" {
		name = "lexcraft"
	}
	collection, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	return &Store{
		db:         db,
		collection: collection,
		perSource:  make(map[string]map[string]struct{}),
	}, nil
}

// Upsert writes records, replacing any with the same ID.
func (s *Store) Upsert(ctx context.Context, records []*domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromemgo.Document, len(records))
	for i, r := range records {
		metadata := map[string]string{
			metaSourceID:   r.Payload.SourceID,
			metaChunkIndex: strconv.Itoa(r.Payload.ChunkIndex),
			metaChunkCount: strconv.Itoa(r.Payload.ChunkCount),
		}
		for k, v := range r.Payload.Tags {
			metadata[tagPrefix+k] = v
		}
		docs[i] = chromemgo.Document{
			ID:        r.ID,
			Content:   r.Payload.Text,
			Metadata:  metadata,
			Embedding: r.Embedding,
		}
	}

	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("%w: chromem upsert: %v", domain.ErrDependencyFailed, err)
	}

	s.mu.Lock()
	for _, r := range records {
		ids, ok := s.perSource[r.Payload.SourceID]
		if !ok {
			ids = make(map[string]struct{})
			s.perSource[r.Payload.SourceID] = ids
		}
		ids[r.ID] = struct{}{}
	}
	s.mu.Unlock()

	return nil
}

// Query returns the topK nearest records. Multi-value filters are applied
// after the similarity search because chromem matches one value per key.
func (s *Store) Query(ctx context.Context, embedding []float32, topK int, filters domain.Filters) ([]*domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 5
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	// Over-fetch when post-filtering so the filter does not starve topK.
	fetch := topK
	if len(filters) > 0 {
		fetch = topK * 4
	}
	if fetch > count {
		fetch = count
	}

	raw, err := s.collection.QueryWithOptions(ctx, chromemgo.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       fetch,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chromem query: %v", domain.ErrDependencyFailed, err)
	}

	results := make([]*domain.RetrievalResult, 0, topK)
	for _, r := range raw {
		tags := tagsFromMetadata(r.Metadata)
		if filters != nil && !filters.Matches(tags) {
			continue
		}
		results = append(results, &domain.RetrievalResult{
			ID:       r.ID,
			SourceID: r.Metadata[metaSourceID],
			Text:     r.Content,
			Score:    float64(r.Similarity),
			Tags:     tags,
		})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

// Delete removes records by ID.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.collection.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("%w: chromem delete: %v", domain.ErrDependencyFailed, err)
	}

	s.mu.Lock()
	for _, sourceIDs := range s.perSource {
		for _, id := range ids {
			delete(sourceIDs, id)
		}
	}
	s.mu.Unlock()
	return nil
}

// DeleteBySource removes every record for a source.
func (s *Store) DeleteBySource(ctx context.Context, sourceID string) error {
	if err := s.collection.Delete(ctx, map[string]string{metaSourceID: sourceID}, nil); err != nil {
		return fmt.Errorf("%w: chromem delete by source: %v", domain.ErrDependencyFailed, err)
	}

	s.mu.Lock()
	delete(s.perSource, sourceID)
	s.mu.Unlock()
	return nil
}

// Stats returns the total vector count and the tracked per-source breakdown.
func (s *Store) Stats(ctx context.Context) (*domain.StoreStats, error) {
	stats := &domain.StoreStats{
		TotalVectors: s.collection.Count(),
		PerSource:    make(map[string]int),
	}

	s.mu.RLock()
	for sourceID, ids := range s.perSource {
		if len(ids) > 0 {
			stats.PerSource[sourceID] = len(ids)
		}
	}
	s.mu.RUnlock()
	return stats, nil
}

// HealthCheck always succeeds for the embedded store.
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// Close releases resources. Persistence is write-through, nothing to flush.
func (s *Store) Close() error {
	return nil
}

func tagsFromMetadata(metadata map[string]string) domain.Tags {
	var tags domain.Tags
	for k, v := range metadata {
		if name, ok := strings.CutPrefix(k, tagPrefix); ok {
			if tags == nil {
				tags = make(domain.Tags)
			}
			tags[name] = v
		}
	}
	return tags
}
