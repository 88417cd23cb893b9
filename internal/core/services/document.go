package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driving.DocumentService = (*DocumentStore)(nil)
	_ driving.SearchService   = (*DocumentStore)(nil)
	_ Retriever               = (*DocumentStore)(nil)
)

const (
	// defaultSearchLimit bounds a search when the caller sets none.
	defaultSearchLimit = 5

	// defaultScoreThreshold is the minimum similarity for a search hit
	// when the caller sets none.
	defaultScoreThreshold = 0.7

	// overFetchFactor is how many times more candidates are requested
	// than the caller asked for, so that threshold and metadata
	// filtering still leave enough results. The same factor applies at
	// every layer that over-fetches.
	overFetchFactor = 3
)

// DocumentStore provides document persistence with embed-on-write and
// an optional read-through cache. It composes the repository, the
// cache and the embedding service into the single store the rest of
// the application talks to.
type DocumentStore struct {
	repo     driven.DocumentRepository
	cache    driven.DocumentCache
	embedder driven.EmbeddingService
	log      *logrus.Logger
}

// NewDocumentStore creates a document store over the given repository.
// The cache and embedder are optional: without a cache every read hits
// the repository, and without an embedder documents are stored exactly
// as given.
func NewDocumentStore(
	repo driven.DocumentRepository,
	cache driven.DocumentCache,
	embedder driven.EmbeddingService,
	log *logrus.Logger,
) *DocumentStore {
	if log == nil {
		log = logrus.New()
	}
	return &DocumentStore{
		repo:     repo,
		cache:    cache,
		embedder: embedder,
		log:      log,
	}
}

// Store persists a document, embedding its content first when no
// embedding is attached. Returns the document ID, generating one when
// the document has none.
func (s *DocumentStore) Store(ctx context.Context, doc domain.Document) (string, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return "", fmt.Errorf("%w: document content is empty", domain.ErrInvalidInput)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if !doc.HasEmbedding() && s.embedder != nil {
		embedding, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return "", fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = embedding
	}

	if err := s.repo.Store(ctx, doc); err != nil {
		return "", fmt.Errorf("store document %s: %w", doc.ID, err)
	}
	s.cachePut(doc)

	s.log.WithFields(logrus.Fields{
		"id":       doc.ID,
		"owner":    doc.OwnerID,
		"theme":    doc.ThemeID,
		"embedded": doc.HasEmbedding(),
	}).Debug("Document stored")

	return doc.ID, nil
}

// Get retrieves a document, serving from the cache when possible and
// backfilling the cache on a repository hit.
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}

	if s.cache != nil {
		if doc, ok := s.cache.Get(id); ok {
			return doc, nil
		}
	}

	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	s.cachePut(*doc)
	return doc, nil
}

// GetMany retrieves the documents for the given IDs, partitioning them
// into cache hits and misses and fetching the misses in one batch when
// the repository supports it. Missing IDs are skipped, not errors, and
// the result preserves the input order.
func (s *DocumentStore) GetMany(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return []domain.Document{}, nil
	}

	found := make(map[string]domain.Document, len(ids))
	var misses []string

	for _, id := range ids {
		if s.cache != nil {
			if doc, ok := s.cache.Get(id); ok {
				found[id] = *doc
				continue
			}
		}
		misses = append(misses, id)
	}

	if len(misses) > 0 {
		for _, doc := range s.fetchMissing(ctx, misses) {
			found[doc.ID] = doc
			s.cachePut(doc)
		}
	}

	results := make([]domain.Document, 0, len(found))
	for _, id := range ids {
		if doc, ok := found[id]; ok {
			results = append(results, doc)
		}
	}
	return results, nil
}

// fetchMissing loads documents from the repository, using the batch
// capability when the repository offers one. Failed reads are logged
// and skipped.
func (s *DocumentStore) fetchMissing(ctx context.Context, ids []string) []domain.Document {
	if batcher, ok := s.repo.(driven.BatchFetcher); ok {
		docs, err := batcher.GetMany(ctx, ids)
		if err == nil {
			return docs
		}
		s.log.WithError(err).Warn("Batch fetch failed, falling back to per-ID reads")
	}

	docs := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.repo.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.log.WithError(err).WithField("id", id).Warn("Document read failed")
			}
			continue
		}
		docs = append(docs, *doc)
	}
	return docs
}

// Update replaces an existing document, re-embedding its content when
// no embedding is attached, and refreshes the cache entry.
func (s *DocumentStore) Update(ctx context.Context, doc domain.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	doc.UpdatedAt = time.Now()

	if !doc.HasEmbedding() && s.embedder != nil {
		embedding, err := s.embedder.Embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = embedding
	}

	if err := s.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	s.cachePut(doc)
	return nil
}

// Delete removes a document from the repository. Cache eviction is
// best-effort and never fails the delete.
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if s.cache != nil {
		s.cache.Remove(id)
	}
	s.log.WithField("id", id).Debug("Document deleted")
	return nil
}

// Count returns the number of stored documents matching the criteria,
// delegating to the repository when it can count and scanning
// otherwise.
func (s *DocumentStore) Count(ctx context.Context, criteria domain.CountCriteria) (int, error) {
	if counter, ok := s.repo.(driven.Counter); ok {
		n, err := counter.Count(ctx, criteria)
		if err == nil {
			return n, nil
		}
		s.log.WithError(err).Warn("Repository count failed, falling back to scan")
	}

	docs, err := s.repo.GetAll(ctx, criteria.OwnerID, criteria.ThemeID)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	n := 0
	for _, doc := range docs {
		if criteria.Matches(doc) {
			n++
		}
	}
	return n, nil
}

// List returns stored documents scoped to owner and theme when set,
// newest first. Ties keep repository order.
func (s *DocumentStore) List(ctx context.Context, ownerID, themeID string) ([]domain.Document, error) {
	docs, err := s.repo.GetAll(ctx, ownerID, themeID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// SemanticSearch ranks stored documents by similarity to the query
// embedding, over-fetching from the repository so that threshold and
// metadata filtering still leave enough results. Repository failures
// degrade to an empty result so callers can always render a
// well-formed response.
func (s *DocumentStore) SemanticSearch(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]domain.Candidate, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("%w: query embedding is empty", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	threshold := opts.Threshold
	if threshold < 0 {
		threshold = defaultScoreThreshold
	}

	repoOpts := opts
	repoOpts.Limit = limit * overFetchFactor

	matches, err := s.repo.SearchSimilar(ctx, embedding, repoOpts)
	if err != nil {
		s.log.WithError(err).Warn("Similarity search failed")
		return []domain.Candidate{}, nil
	}

	candidates := make([]domain.Candidate, 0, len(matches))
	for _, match := range matches {
		score := match.Score
		if !match.Scored {
			score = domain.CosineSimilarity(embedding, match.Document.Embedding)
		}
		if score < threshold {
			continue
		}
		if !match.Document.MatchesFilters(opts.Filters) {
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Document: match.Document,
			Score:    score,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s.log.WithFields(logrus.Fields{
		"matches":   len(matches),
		"returned":  len(candidates),
		"threshold": threshold,
	}).Debug("Semantic search complete")

	return candidates, nil
}

// Search embeds the query text and runs a semantic search with it.
func (s *DocumentStore) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Candidate{}, nil
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.SemanticSearch(ctx, embedding, opts)
}

// cachePut writes through to the cache when one is configured. Cache
// write failures are logged and ignored; the cache is rebuildable from
// the repository.
func (s *DocumentStore) cachePut(doc domain.Document) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(doc); err != nil {
		s.log.WithError(err).WithField("id", doc.ID).Debug("Cache write failed")
	}
}
