package driven

import "context"

// TextExtractor converts one document format into plain text.
type TextExtractor interface {
	// Extract reads the file at path and returns its plain text
	Extract(ctx context.Context, path string) (string, error)

	// SupportedExtensions returns the file extensions this extractor
	// handles, lowercase with leading dot (".pdf", ".docx")
	SupportedExtensions() []string
}

// ExtractorRegistry resolves the extractor for a file. Unknown extensions
// fall through to the plain-text extractor.
type ExtractorRegistry interface {
	// Get retrieves the extractor for a path based on its extension.
	// Never returns nil; unknown types get the plain-text fallback.
	Get(path string) TextExtractor

	// Register registers an extractor for its supported extensions
	Register(extractor TextExtractor)

	// List returns all registered extensions
	List() []string
}
