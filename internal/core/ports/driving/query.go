package driving

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// QueryService answers questions grounded in stored documents.
type QueryService interface {
	// Answer runs the full query pipeline: embed the question, retrieve
	// candidates, optionally rerank, assemble context and generate an
	// answer. It never fails; pipeline errors are reported inside the
	// returned Answer.
	Answer(ctx context.Context, req domain.QueryRequest) domain.Answer
}
