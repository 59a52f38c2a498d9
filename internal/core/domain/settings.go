package domain

import "time"

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// RequiresAPIKey returns true if this provider requires an API key
func (p AIProvider) RequiresAPIKey() bool {
	switch p {
	case AIProviderOllama:
		return false // Self-hosted, no API key needed
	default:
		return true
	}
}

// IsValid returns true if this is a known provider
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama:
		return true
	default:
		return false
	}
}

// AISettings holds AI service configuration (embedding and LLM).
// This can be updated at runtime via the settings service; API keys are
// persisted encrypted and never serialised.
type AISettings struct {
	Embedding EmbeddingSettings `json:"embedding"`
	LLM       LLMSettings       `json:"llm"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EmbeddingSettings configures the embedding service
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the generation service
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// Validate checks if AISettings are valid
func (s *AISettings) Validate() error {
	if s.Embedding.Provider != "" && !s.Embedding.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if s.LLM.Provider != "" && !s.LLM.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}

// PipelineSettings groups the tunables shared by every retrieval and
// ingestion call site. One configuration surface, no per-call constants.
type PipelineSettings struct {
	// ChunkSize is the maximum characters per chunk
	ChunkSize int `json:"chunk_size"`

	// ChunkOverlap is the character overlap between chunks
	ChunkOverlap int `json:"chunk_overlap"`

	// EmbedBatchSize bounds chunks per embedding/upsert batch
	EmbedBatchSize int `json:"embed_batch_size"`

	// BatchDelay is the pause between ingestion batches, respecting
	// embedding-provider rate limits
	BatchDelay time.Duration `json:"batch_delay" swaggertype:"integer"`

	// TopK is the default number of results per retrieval
	TopK int `json:"top_k"`

	// MaxTopK caps caller-supplied top_k values
	MaxTopK int `json:"max_top_k"`

	// MinScore is the relevance threshold for confident-mode search
	MinScore float64 `json:"min_score"`

	// ContextMaxChars truncates each result fed into a generation prompt
	ContextMaxChars int `json:"context_max_chars"`

	// ContextMaxResults bounds results per generation prompt
	ContextMaxResults int `json:"context_max_results"`
}

// DefaultPipelineSettings returns the documented defaults.
func DefaultPipelineSettings() PipelineSettings {
	return PipelineSettings{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		EmbedBatchSize:    20,
		BatchDelay:        time.Second,
		TopK:              5,
		MaxTopK:           10000,
		MinScore:          0.7,
		ContextMaxChars:   800,
		ContextMaxResults: 5,
	}
}
