package domain

import "time"

// Source is a registry entry for one ingested document. The registry lives
// beside the vector store so listings and chunk counts survive a store reset
// and stale-chunk cleanup knows how long the prior version was.
type Source struct {
	// ID is the caller-chosen identifier, typically the file path relative
	// to the ingestion root ("leases/mumbai-flat.pdf")
	ID string `json:"id"`

	// Title is a display name derived from the ID
	Title string `json:"title"`

	// Tags are the metadata attached to every chunk of this source
	Tags Tags `json:"tags,omitempty"`

	// ChunkCount is how many chunks the latest ingestion produced
	ChunkCount int `json:"chunk_count"`

	// IngestedAt is when the source was last ingested
	IngestedAt time.Time `json:"ingested_at"`
}
