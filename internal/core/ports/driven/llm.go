package driven

import (
	"context"
)

// Prompt is a combined system+user prompt for one completion call.
type Prompt struct {
	System string
	User   string
}

// CompletionOptions tunes a single completion call.
type CompletionOptions struct {
	// MaxTokens bounds the response length (0 = provider default)
	MaxTokens int

	// Temperature controls sampling randomness
	Temperature float64

	// JSONOutput asks the provider to constrain output to a JSON object.
	// Providers that cannot enforce this still receive the instruction in
	// the prompt; callers must parse defensively either way.
	JSONOutput bool
}

// Completion is the result of one generation call.
type Completion struct {
	Text       string
	TokenCount int
}

// LLMService provides text generation for drafting
type LLMService interface {
	// Complete runs a single completion over the prompt
	Complete(ctx context.Context, prompt Prompt, opts CompletionOptions) (*Completion, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
