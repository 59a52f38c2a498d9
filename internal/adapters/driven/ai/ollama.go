package ai

import (
	"context"
	"fmt"
	"sync"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// Ensure the Ollama adapters implement their ports
var (
	_ driven.EmbeddingService = (*OllamaEmbedding)(nil)
	_ driven.LLMService       = (*OllamaLLM)(nil)
)

// Known dimensions for common Ollama embedding models. Unknown models are
// probed on first use.
var ollamaModelDimensions = map[string]int{
	"nomic-embed-text":  768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// OllamaEmbedding implements EmbeddingService against a local Ollama server
type OllamaEmbedding struct {
	model    string
	embedder *embeddings.EmbedderImpl

	mu         sync.Mutex
	dimensions int
}

// NewOllamaEmbedding creates an embedding service backed by Ollama
func NewOllamaEmbedding(baseURL, model string) (driven.EmbeddingService, error) {
	if model == "" {
		model = "nomic-embed-text"
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise ollama client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &OllamaEmbedding{
		model:      model,
		embedder:   embedder,
		dimensions: ollamaModelDimensions[model],
	}, nil
}

// Embed generates embeddings for multiple texts
func (e *OllamaEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}
	if len(vectors) > 0 {
		e.recordDimensions(len(vectors[0]))
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a search query
func (e *OllamaEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ollama query embedding failed: %w", err)
	}
	e.recordDimensions(len(vector))
	return vector, nil
}

// Dimensions returns the embedding dimension size. Zero until the model is
// known or the first embedding has been produced.
func (e *OllamaEmbedding) Dimensions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dimensions
}

func (e *OllamaEmbedding) recordDimensions(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dimensions == 0 && n > 0 {
		e.dimensions = n
	}
}

// Model returns the model name being used
func (e *OllamaEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *OllamaEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *OllamaEmbedding) Close() error {
	return nil
}

// OllamaLLM implements LLMService against a local Ollama server
type OllamaLLM struct {
	model string
	llm   *ollama.LLM
}

// NewOllamaLLM creates an LLM service backed by Ollama
func NewOllamaLLM(baseURL, model string) (driven.LLMService, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	llm, err := ollama.New(
		ollama.WithServerURL(baseURL),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise ollama client: %w", err)
	}

	return &OllamaLLM{model: model, llm: llm}, nil
}

// Complete runs a single completion over the prompt
func (l *OllamaLLM) Complete(ctx context.Context, prompt driven.Prompt, opts driven.CompletionOptions) (*driven.Completion, error) {
	var messages []llms.MessageContent
	if prompt.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, prompt.System))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt.User))

	var callOpts []llms.CallOption
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(opts.Temperature))
	}
	if opts.JSONOutput {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	resp, err := l.llm.GenerateContent(ctx, messages, callOpts...)
	if err != nil {
		return nil, fmt.Errorf("ollama completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no completion returned")
	}

	choice := resp.Choices[0]
	completion := &driven.Completion{Text: choice.Content}
	if tokens, ok := choice.GenerationInfo["CompletionTokens"].(int); ok {
		completion.TokenCount = tokens
	}
	return completion, nil
}

// Model returns the model name being used
func (l *OllamaLLM) Model() string {
	return l.model
}

// Ping verifies the LLM service is available
func (l *OllamaLLM) Ping(ctx context.Context) error {
	_, err := l.llm.Call(ctx, "ping", llms.WithMaxTokens(1))
	return err
}

// Close releases resources held by the LLM service
func (l *OllamaLLM) Close() error {
	return nil
}
