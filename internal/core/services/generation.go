package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/domain"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driving"
	"github.com/lexcraft-labs/lexcraft-core/internal/runtime"
)

// Ensure generationService implements GenerationService
var _ driving.GenerationService = (*generationService)(nil)

// maxExcerptLength bounds the excerpt carried by each draft reference.
const maxExcerptLength = 200

// generationService orchestrates grounded drafting. Every operation is
// stateless; the only state is the injected dependencies.
type generationService struct {
	retrieval driving.RetrievalService
	assembler *ContextAssembler
	services  *runtime.Services
	settings  domain.PipelineSettings
	timeout   time.Duration
	logger    *slog.Logger
}

// GenerationConfig holds dependencies for the generation service.
type GenerationConfig struct {
	Retrieval driving.RetrievalService
	Assembler *ContextAssembler
	Services  *runtime.Services
	Settings  domain.PipelineSettings
	Timeout   time.Duration
	Logger    *slog.Logger
}

// NewGenerationService creates a new GenerationService.
// The LLM is accessed dynamically via runtime.Services; drafting degrades
// to a fixed skeleton when it is unconfigured, while refine and compare
// fail loudly because their callers have no safe default.
func NewGenerationService(cfg GenerationConfig) driving.GenerationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &generationService{
		retrieval: cfg.Retrieval,
		assembler: cfg.Assembler,
		services:  cfg.Services,
		settings:  cfg.Settings,
		timeout:   timeout,
		logger:    logger,
	}
}

// GenerateDraft runs the full drafting pipeline: retrieve, assemble
// context, select template, complete, annotate references.
func (s *generationService) GenerateDraft(ctx context.Context, req *domain.GenerationRequest) (*domain.GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	// Raw mode: low-relevance passages still make useful grounding, and
	// the assembler bounds how much of them reaches the prompt.
	grounding := s.retrieve(ctx, req.RetrievalQuery())
	contextBlock := s.assembler.Assemble(grounding)

	result := &domain.GenerationResult{
		ID:          domain.GenerateID(),
		GeneratedAt: time.Now(),
		References:  buildReferences(grounding, s.settings.ContextMaxResults),
	}

	llm := s.services.LLMService()
	if llm == nil {
		// Degraded mode: a labelled skeleton, never an error.
		s.logger.Warn("draft generation degraded, no LLM configured")
		result.Text = fallbackDraft(req)
		result.ModelIdentifier = "fallback-template"
		result.Degraded = true
		result.ImprovementSuggestions = append([]string(nil), genericSuggestions...)
		result.ProcessingDuration = time.Since(start)
		return result, nil
	}

	system, user := buildDraftPrompt(req, contextBlock)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := llm.Complete(callCtx, driven.Prompt{System: system, User: user}, driven.CompletionOptions{
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: draft generation: %v", domain.ErrDependencyFailed, err)
	}

	result.Text = completion.Text
	result.TokenCount = completion.TokenCount
	result.ModelIdentifier = llm.Model()

	// Advisory second pass; never fails the draft.
	suggestions, err := s.SuggestImprovements(ctx, completion.Text)
	if err == nil {
		result.ImprovementSuggestions = suggestions
	}

	result.ProcessingDuration = time.Since(start)
	return result, nil
}

// retrieve fetches grounding passages, tolerating retrieval failure: a
// draft without references beats no draft.
func (s *generationService) retrieve(ctx context.Context, query string) []*domain.RetrievalResult {
	response, err := s.retrieval.Search(ctx, query, domain.SearchOptions{
		Mode: domain.SearchModeRaw,
		TopK: s.settings.TopK,
	})
	if err != nil {
		s.logger.Warn("grounding retrieval failed, drafting without references", "error", err)
		return nil
	}
	return response.Results
}

// buildReferences annotates the retrieval results that fed the prompt.
// References come only from this request's retrieval, never elsewhere.
func buildReferences(results []*domain.RetrievalResult, cap int) []domain.Reference {
	if cap <= 0 {
		cap = 5
	}
	if len(results) > cap {
		results = results[:cap]
	}

	references := make([]domain.Reference, 0, len(results))
	for _, r := range results {
		excerpt := r.Text
		if len(excerpt) > maxExcerptLength {
			excerpt = excerpt[:maxExcerptLength] + "..."
		}
		references = append(references, domain.Reference{
			SourceID:       r.SourceID,
			RelevanceScore: r.Score,
			Excerpt:        excerpt,
		})
	}
	return references
}

// Refine rewrites an existing draft. Fails loudly: the caller needs the
// refined text and has no safe default.
func (s *generationService) Refine(ctx context.Context, original, instructions string) (string, error) {
	if strings.TrimSpace(original) == "" {
		return "", fmt.Errorf("%w: original text must not be empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(instructions) == "" {
		return "", fmt.Errorf("%w: instructions must not be empty", domain.ErrInvalidInput)
	}

	llm := s.services.LLMService()
	if llm == nil {
		return "", fmt.Errorf("%w: refine requires a generation provider", domain.ErrNotConfigured)
	}

	system, user := buildRefinePrompt(original, instructions)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := llm.Complete(callCtx, driven.Prompt{System: system, User: user}, driven.CompletionOptions{
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: refine: %v", domain.ErrDependencyFailed, err)
	}
	return completion.Text, nil
}

// Compare produces a clause-by-clause comparison of two drafts.
func (s *generationService) Compare(ctx context.Context, a, b string) (string, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return "", fmt.Errorf("%w: both documents must be non-empty", domain.ErrInvalidInput)
	}

	llm := s.services.LLMService()
	if llm == nil {
		return "", fmt.Errorf("%w: compare requires a generation provider", domain.ErrNotConfigured)
	}

	system, user := buildComparePrompt(a, b)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := llm.Complete(callCtx, driven.Prompt{System: system, User: user}, driven.CompletionOptions{
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("%w: compare: %v", domain.ErrDependencyFailed, err)
	}
	return completion.Text, nil
}

// ExtractSections splits a draft into named sections. Advisory: failures
// of any kind yield an empty map, never an error from the backend.
func (s *generationService) ExtractSections(ctx context.Context, text string) (domain.SectionMap, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", domain.ErrInvalidInput)
	}

	llm := s.services.LLMService()
	if llm == nil {
		return domain.SectionMap{}, nil
	}

	system, user := buildSectionsPrompt(text)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := llm.Complete(callCtx, driven.Prompt{System: system, User: user}, driven.CompletionOptions{
		JSONOutput: true,
	})
	if err != nil {
		s.logger.Warn("section extraction failed", "error", err)
		return domain.SectionMap{}, nil
	}

	sections := parseSections(completion.Text)
	if sections == nil {
		s.logger.Warn("section extraction output not parseable")
		return domain.SectionMap{}, nil
	}
	return sections, nil
}

// parseSections tries a strict JSON parse, then a looser pass that pulls
// the first JSON object out of surrounding prose or code fences.
func parseSections(raw string) domain.SectionMap {
	var sections domain.SectionMap
	if err := json.Unmarshal([]byte(raw), &sections); err == nil {
		return sections
	}

	// Loose pass: models wrap JSON in fences or explanation.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &sections); err != nil {
		return nil
	}
	return sections
}

// ordinalPrefix strips leading list markers: "1.", "2)", "-", "*".
var ordinalPrefix = regexp.MustCompile(`^\s*(?:\d+[.)]\s*|[-*]\s+)`)

// SuggestImprovements returns 1-5 improvement suggestions. Advisory: the
// caller always receives a non-empty, bounded list.
func (s *generationService) SuggestImprovements(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text must not be empty", domain.ErrInvalidInput)
	}

	llm := s.services.LLMService()
	if llm == nil {
		return append([]string(nil), genericSuggestions...), nil
	}

	system, user := buildSuggestionsPrompt(text)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := llm.Complete(callCtx, driven.Prompt{System: system, User: user}, driven.CompletionOptions{
		Temperature: 0.4,
	})
	if err != nil {
		s.logger.Warn("improvement suggestions failed, using generic set", "error", err)
		return append([]string(nil), genericSuggestions...), nil
	}

	suggestions := parseSuggestions(completion.Text)
	if len(suggestions) == 0 {
		return append([]string(nil), genericSuggestions...), nil
	}
	return suggestions, nil
}

// parseSuggestions extracts at most MaxImprovementSuggestions items from a
// numbered or bulleted list.
func parseSuggestions(raw string) []string {
	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		item := strings.TrimSpace(ordinalPrefix.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		suggestions = append(suggestions, item)
		if len(suggestions) == domain.MaxImprovementSuggestions {
			break
		}
	}
	return suggestions
}
