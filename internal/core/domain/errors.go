package domain

import "errors"

// Sentinel errors for business rule failures. Adapters translate
// backend-specific failures into these so callers can branch with
// errors.Is regardless of the configured infrastructure.
var (
	// ErrNotFound marks a lookup for an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists marks an insert colliding with a stored entity.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput marks malformed or out-of-range caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable means no LLM is configured, disabling answer
	// generation and LLM reranking.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable means no embedding provider is
	// configured, disabling semantic retrieval.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch marks a vector whose width differs from
	// what the configured model produces.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRateLimited surfaces a provider 429; ingestion can back off
	// and retry instead of failing the batch.
	ErrRateLimited = errors.New("rate limited")
)
