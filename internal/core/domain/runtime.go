package domain

import "sync"

// RuntimeConfig tracks which capabilities are available at runtime.
// The vector store backend is determined at startup; AI services can be
// configured and cleared dynamically. Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	VectorStoreBackend string // "qdrant", "chromem" or "" (fallback)
	QueueBackend       string // "redis" or "postgres"

	// Dynamic capability flags (updated when AI services change)
	embeddingAvailable   bool
	llmAvailable         bool
	vectorStoreAvailable bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(vectorStoreBackend, queueBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		VectorStoreBackend: vectorStoreBackend,
		QueueBackend:       queueBackend,
	}
}

// EmbeddingAvailable returns whether the embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether the generation service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// VectorStoreAvailable returns whether a live vector store is reachable
func (c *RuntimeConfig) VectorStoreAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vectorStoreAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// SetVectorStoreAvailable updates the vector store availability flag
func (c *RuntimeConfig) SetVectorStoreAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectorStoreAvailable = available
}

// CanIngest returns true if ingestion can write live vectors. Without an
// embedding service or store, ingestion degrades to a logged skip.
func (c *RuntimeConfig) CanIngest() bool {
	return c.EmbeddingAvailable() && c.VectorStoreAvailable()
}

// CanRetrieve returns true if live similarity search is possible
func (c *RuntimeConfig) CanRetrieve() bool {
	return c.EmbeddingAvailable() && c.VectorStoreAvailable()
}

// CanGenerate returns true if a generation capability is configured
func (c *RuntimeConfig) CanGenerate() bool {
	return c.LLMAvailable()
}
