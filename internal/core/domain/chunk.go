package domain

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// MaxStoredTextLength bounds the chunk text persisted in a vector record's
// payload. Full text is kept for retrieval results; the stored copy is
// truncated to keep payload size predictable.
const MaxStoredTextLength = 4000

// Chunk is a contiguous slice of a source document's text. It is the unit
// of embedding and retrieval. Chunks are immutable once embedded; re-ingesting
// the same source produces chunks with the same IDs, so the stored vectors
// are overwritten rather than duplicated.
type Chunk struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	Text       string    `json:"text"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkCount int       `json:"chunk_count"`
	Tags       Tags      `json:"tags,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Tags is open key/value metadata attached to a chunk. Known keys
// (draft_type, category, jurisdiction) are validated; anything else is
// carried through untouched.
type Tags map[string]string

// Known tag keys.
const (
	TagDraftType    = "draft_type"
	TagCategory     = "category"
	TagJurisdiction = "jurisdiction"
)

// Clone returns a copy so callers can mutate freely.
func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// ChunkID derives the deterministic ID for a chunk of a source.
// The same (sourceID, index) always yields the same ID, which makes
// re-ingestion overwrite rather than append. The ID is formatted as a
// UUID so it is accepted by vector stores that require UUID point IDs.
func ChunkID(sourceID string, index int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s#%d", sourceID, index)))
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

// VectorRecord is the persisted form of a chunk: its embedding plus a
// payload carrying the (truncated) text and metadata. Records are owned by
// the vector store and replaced wholesale on re-ingestion.
type VectorRecord struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"embedding"`
	Payload   Payload   `json:"payload"`
}

// Payload is the metadata stored alongside an embedding.
type Payload struct {
	SourceID   string `json:"source_id"`
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunk_index"`
	ChunkCount int    `json:"chunk_count"`
	Tags       Tags   `json:"tags,omitempty"`
}

// NewVectorRecord assembles the persisted form of a chunk. The payload text
// is truncated to MaxStoredTextLength.
func NewVectorRecord(chunk *Chunk, embedding []float32) *VectorRecord {
	text := chunk.Text
	if len(text) > MaxStoredTextLength {
		text = text[:MaxStoredTextLength]
	}
	return &VectorRecord{
		ID:        chunk.ID,
		Embedding: embedding,
		Payload: Payload{
			SourceID:   chunk.SourceID,
			Text:       text,
			ChunkIndex: chunk.ChunkIndex,
			ChunkCount: chunk.ChunkCount,
			Tags:       chunk.Tags,
		},
	}
}

// StoreStats describes the current contents of the vector store.
type StoreStats struct {
	TotalVectors int            `json:"total_vectors"`
	PerSource    map[string]int `json:"per_source_breakdown"`
}
