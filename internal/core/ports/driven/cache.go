package driven

import "github.com/custodia-labs/ansa/internal/core/domain"

// DocumentCache is a local read cache in front of the repository.
// Cache failures are never fatal: a failed read is a miss and a failed
// write is logged and ignored by callers.
type DocumentCache interface {
	// Get returns the cached document and true on a hit.
	Get(id string) (*domain.Document, bool)

	// Put stores the document in the cache, replacing any prior entry.
	Put(doc domain.Document) error

	// Remove evicts the document from the cache. Eviction is
	// best-effort; a document that cannot be evicted will simply be
	// served stale until overwritten.
	Remove(id string)
}
