package driving

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// SearchService provides semantic search to external actors.
type SearchService interface {
	// Search embeds the query and returns documents ranked by
	// similarity, subject to the options' scope and threshold.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.Candidate, error)
}
