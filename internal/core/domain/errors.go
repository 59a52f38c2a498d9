package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the request is malformed: instruction too
	// short, empty query, non-positive top_k. Never retried, surfaced
	// immediately.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required capability has no credentials
	// or endpoint. Operations that can degrade substitute fallback
	// behaviour instead of returning this.
	ErrNotConfigured = errors.New("capability not configured")

	// ErrDependencyFailed indicates a remote call failed after its
	// retry/timeout budget.
	ErrDependencyFailed = errors.New("dependency failed")

	// ErrMalformedOutput indicates generation output did not match the
	// expected structured shape.
	ErrMalformedOutput = errors.New("malformed generation output")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidChunkConfig indicates chunker size/overlap settings are
	// inconsistent (overlap must be smaller than size)
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrServiceUnavailable indicates the AI service could not be reached
	ErrServiceUnavailable = errors.New("service unavailable")
)
