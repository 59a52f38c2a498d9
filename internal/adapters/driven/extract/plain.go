package extract

import (
	"context"
	"fmt"
	"os"
)

// PlainText reads files as-is. It doubles as the fallback for unknown
// extensions, so it must tolerate anything that is roughly text.
type PlainText struct{}

// Extract reads the file and normalises line endings.
func (e *PlainText) Extract(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return normaliseText(string(data)), nil
}

// SupportedExtensions returns the plain-text extensions.
func (e *PlainText) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}
