package driving

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// DocumentService manages the document store.
type DocumentService interface {
	// Store persists a document, embedding its content first when no
	// embedding is attached. Returns the document ID.
	Store(ctx context.Context, doc domain.Document) (string, error)

	// Get retrieves a document by ID.
	// Returns domain.ErrNotFound when the document does not exist.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetMany retrieves the documents for the given IDs in one pass.
	// Missing IDs are skipped, not errors.
	GetMany(ctx context.Context, ids []string) ([]domain.Document, error)

	// Update replaces an existing document, re-embedding when the
	// content changed and no new embedding is attached.
	Update(ctx context.Context, doc domain.Document) error

	// Delete removes a document from the repository and the cache.
	Delete(ctx context.Context, id string) error

	// Count returns the number of stored documents matching the criteria.
	Count(ctx context.Context, criteria domain.CountCriteria) (int, error)

	// List returns stored documents scoped to owner and theme when set,
	// newest first.
	List(ctx context.Context, ownerID, themeID string) ([]domain.Document, error)
}
