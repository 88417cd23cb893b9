package driven

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// Reranker reorders retrieval candidates by relevance to a query.
// This is an optional service - when nil, retrieval order is kept.
type Reranker interface {
	// Rerank scores the candidates against the query and returns up to
	// topK of them ordered by descending reranked score. Candidates
	// scoring below the caller's threshold may be dropped; when every
	// candidate is dropped the caller falls back to retrieval order.
	Rerank(ctx context.Context, query string, candidates []domain.Candidate, topK int) ([]domain.Candidate, error)

	// Name identifies the reranking strategy (e.g. "bm25", "llm").
	Name() string
}
