package chunker

import (
	"fmt"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
)

// Config configures the chunker behavior.
type Config struct {
	// Size is the maximum characters per chunk
	Size int

	// Overlap is the number of trailing characters repeated at the start
	// of the next chunk
	Overlap int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Size:    1000,
		Overlap: 200,
	}
}

// Chunker splits text into overlapping fixed-size segments by sliding a
// window forward by Size-Overlap characters. Splitting is deterministic:
// identical input always yields the identical ordered sequence, which the
// ingestion pipeline relies on for its idempotent ID scheme.
type Chunker struct {
	config Config
}

// New creates a chunker, validating that the window actually advances.
func New(config Config) (*Chunker, error) {
	if config.Size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", domain.ErrInvalidChunkConfig, config.Size)
	}
	if config.Overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrInvalidChunkConfig, config.Overlap)
	}
	if config.Overlap >= config.Size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than size %d", domain.ErrInvalidChunkConfig, config.Overlap, config.Size)
	}
	return &Chunker{config: config}, nil
}

// Split returns the ordered segments of text. Empty input yields an empty
// sequence. The final segment may be shorter than Size; once a segment
// reaches the end of the text no further segments are produced.
func (c *Chunker) Split(text string) []string {
	if len(text) == 0 {
		return nil
	}

	step := c.config.Size - c.config.Overlap
	var segments []string

	for start := 0; start < len(text); start += step {
		end := start + c.config.Size
		if end > len(text) {
			end = len(text)
		}
		segments = append(segments, text[start:end])
		if end == len(text) {
			break
		}
	}

	return segments
}

// Config returns the active configuration.
func (c *Chunker) Config() Config {
	return c.config
}
