package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore implements driven.SourceStore using PostgreSQL
type SourceStore struct {
	db *DB
}

// NewSourceStore creates a new SourceStore
func NewSourceStore(db *DB) *SourceStore {
	return &SourceStore{db: db}
}

// Save creates or replaces a source record
func (s *SourceStore) Save(ctx context.Context, source *domain.Source) error {
	tagsJSON, err := json.Marshal(source.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sources (id, title, tags, chunk_count, ingested_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			tags = EXCLUDED.tags,
			chunk_count = EXCLUDED.chunk_count,
			ingested_at = EXCLUDED.ingested_at
	`

	_, err = s.db.ExecContext(ctx, query,
		source.ID,
		source.Title,
		tagsJSON,
		source.ChunkCount,
		source.IngestedAt,
	)
	return err
}

// Get retrieves a source by ID
func (s *SourceStore) Get(ctx context.Context, id string) (*domain.Source, error) {
	query := `
		SELECT id, title, tags, chunk_count, ingested_at
		FROM sources
		WHERE id = $1
	`

	source, err := scanSource(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// List retrieves sources ordered by ingestion time, newest first
func (s *SourceStore) List(ctx context.Context, limit, offset int) ([]*domain.Source, error) {
	query := `
		SELECT id, title, tags, chunk_count, ingested_at
		FROM sources
		ORDER BY ingested_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*domain.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

// Delete removes a source record
func (s *SourceStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns the total number of sources
func (s *SourceStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sources`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*domain.Source, error) {
	var source domain.Source
	var tagsJSON []byte

	if err := row.Scan(
		&source.ID,
		&source.Title,
		&tagsJSON,
		&source.ChunkCount,
		&source.IngestedAt,
	); err != nil {
		return nil, err
	}

	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &source.Tags); err != nil {
			return nil, err
		}
	}
	return &source, nil
}
