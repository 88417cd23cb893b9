package driven

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// DocumentRepository persists documents and answers similarity queries.
// Backends include an in-memory map, SQLite, and Chroma.
type DocumentRepository interface {
	// Store persists a new document.
	Store(ctx context.Context, doc domain.Document) error

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound when the document does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Update replaces an existing document.
	// Returns domain.ErrNotFound when the document does not exist.
	Update(ctx context.Context, doc domain.Document) error

	// Delete removes a document.
	// Returns domain.ErrNotFound when the document does not exist.
	Delete(ctx context.Context, id string) error

	// SearchSimilar returns up to limit documents ranked by similarity
	// to the query embedding, scoped to owner and theme when set.
	// Backends that cannot score return matches with Scored false and
	// leave scoring to the caller.
	SearchSimilar(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]SimilarityMatch, error)

	// GetAll returns every document, scoped to owner and theme when set.
	GetAll(ctx context.Context, ownerID, themeID string) ([]domain.Document, error)

	// Close releases resources.
	Close() error
}

// SimilarityMatch is one result of a similarity search.
type SimilarityMatch struct {
	// Document is the matched document.
	Document domain.Document

	// Score is the similarity score when Scored is true.
	Score float64

	// Scored reports whether the backend computed Score itself.
	Scored bool
}

// BatchFetcher is an optional repository capability for fetching
// multiple documents in one round trip. Callers fall back to per-ID
// Get when the repository does not implement it.
type BatchFetcher interface {
	// GetMany retrieves the documents for the given IDs. Missing IDs
	// are skipped, not errors.
	GetMany(ctx context.Context, ids []string) ([]domain.Document, error)
}

// Counter is an optional repository capability for counting documents
// without materialising them. Callers fall back to scanning GetAll
// when the repository does not implement it.
type Counter interface {
	// Count returns the number of documents matching the criteria.
	Count(ctx context.Context, criteria domain.CountCriteria) (int, error)
}
