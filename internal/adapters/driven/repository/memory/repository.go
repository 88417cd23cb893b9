package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure Repository implements the interfaces.
var (
	_ driven.DocumentRepository = (*Repository)(nil)
	_ driven.BatchFetcher       = (*Repository)(nil)
	_ driven.Counter            = (*Repository)(nil)
)

// Repository is an in-memory implementation of driven.DocumentRepository.
// It scores similarity searches itself with brute-force cosine. Nothing
// survives a restart; it is the default backend for zero-config trials
// and the test double of choice.
type Repository struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{docs: make(map[string]domain.Document)}
}

// Store persists a new document.
func (r *Repository) Store(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.docs[doc.ID] = doc
	return nil
}

// Get retrieves a document by ID.
func (r *Repository) Get(_ context.Context, id string) (*domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetMany retrieves the documents for the given IDs. Missing IDs are
// skipped, not errors.
func (r *Repository) GetMany(_ context.Context, ids []string) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := r.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Update replaces an existing document.
func (r *Repository) Update(_ context.Context, doc domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return domain.ErrNotFound
	}
	r.docs[doc.ID] = doc
	return nil
}

// Delete removes a document.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

// SearchSimilar ranks embedded documents by cosine similarity to the
// query embedding, scoped to owner and theme when set. Documents
// without embeddings are skipped.
func (r *Repository) SearchSimilar(_ context.Context, embedding []float32, opts domain.SearchOptions) ([]driven.SimilarityMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]driven.SimilarityMatch, 0, len(r.docs))
	for _, doc := range r.docs {
		if !inScope(doc, opts.OwnerID, opts.ThemeID) {
			continue
		}
		if !doc.HasEmbedding() {
			continue
		}
		matches = append(matches, driven.SimilarityMatch{
			Document: doc,
			Score:    domain.CosineSimilarity(embedding, doc.Embedding),
			Scored:   true,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if opts.Limit > 0 && len(matches) > opts.Limit {
		matches = matches[:opts.Limit]
	}
	return matches, nil
}

// GetAll returns every document, scoped to owner and theme when set.
func (r *Repository) GetAll(_ context.Context, ownerID, themeID string) ([]domain.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var docs []domain.Document
	for _, doc := range r.docs {
		if inScope(doc, ownerID, themeID) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Count returns the number of documents matching the criteria.
func (r *Repository) Count(_ context.Context, criteria domain.CountCriteria) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, doc := range r.docs {
		if criteria.Matches(doc) {
			n++
		}
	}
	return n, nil
}

// Close releases nothing; the repository lives in process memory.
func (r *Repository) Close() error {
	return nil
}

func inScope(doc domain.Document, ownerID, themeID string) bool {
	if ownerID != "" && doc.OwnerID != ownerID {
		return false
	}
	if themeID != "" && doc.ThemeID != themeID {
		return false
	}
	return true
}
