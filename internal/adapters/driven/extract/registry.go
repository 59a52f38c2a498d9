// Package extract converts document formats into plain text for chunking.
// One extractor per format family; selection is by file extension with a
// plain-text fallback so ingestion never dead-ends on an unknown type.
package extract

import (
	"sort"
	"strings"
	"sync"

	"github.com/lexcraft-labs/lexcraft-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry implements ExtractorRegistry with extension-based selection.
type Registry struct {
	mu         sync.RWMutex
	extractors map[string]driven.TextExtractor
	fallback   driven.TextExtractor
}

// NewRegistry creates an empty registry with the plain-text fallback.
func NewRegistry() *Registry {
	return &Registry{
		extractors: make(map[string]driven.TextExtractor),
		fallback:   &PlainText{},
	}
}

// DefaultRegistry creates a registry with all built-in extractors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PlainText{})
	r.Register(&Markdown{})
	r.Register(&PDF{})
	r.Register(&Docx{})
	r.Register(&Xlsx{})
	return r
}

// Register registers an extractor for its supported extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(extractor driven.TextExtractor) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range extractor.SupportedExtensions() {
		r.extractors[strings.ToLower(ext)] = extractor
	}
}

// Get retrieves the extractor for a path based on its extension.
// Unknown extensions get the plain-text fallback, never nil.
func (r *Registry) Get(path string) driven.TextExtractor {
	ext := strings.ToLower(fileExt(path))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if extractor, ok := r.extractors[ext]; ok {
		return extractor
	}
	return r.fallback
}

// List returns all registered extensions, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// fileExt returns the lowercase extension including the dot.
func fileExt(path string) string {
	if idx := strings.LastIndex(path, "."); idx != -1 {
		return path[idx:]
	}
	return ""
}

// normaliseText cleans extracted text: unified line endings, no more than
// one blank line in a row, trimmed ends.
func normaliseText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(text)
}
