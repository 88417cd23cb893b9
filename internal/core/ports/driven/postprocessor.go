package driven

import (
	"context"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// PostProcessor is one stage in the ingestion pipeline. A producing
// stage (the chunker) receives nil chunks and creates them; a filtering
// stage receives the previous stage's chunks and returns a reduced or
// rewritten set.
type PostProcessor interface {
	// Name identifies the stage in configuration and logs.
	Name() string

	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs a document through every stage in order
// and returns the final chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
