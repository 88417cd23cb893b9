// Package postprocessors turns stored documents into the chunks the
// vector repository indexes. Processors are small, composable steps
// chained into a pipeline built from user configuration.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Pipeline runs processors in registration order. It satisfies the
// PostProcessorPipeline port.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline assembles a pipeline that runs the given processors in
// the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process feeds doc through every processor. The first processor sees
// nil chunks and is expected to create them; later ones reshape what
// they receive.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errors.New("pipeline: nil document")
	}

	var chunks []domain.Chunk
	for _, proc := range p.processors {
		next, err := proc.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("postprocessor %s: %w", proc.Name(), err)
		}
		chunks = next
	}
	return chunks, nil
}

// Add appends a processor to the end of the chain.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len reports how many processors the pipeline holds.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// FromConfig builds a pipeline from configuration using the registry.
// An unknown processor name fails construction rather than being
// silently skipped.
func FromConfig(registry *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	pipeline := NewPipeline()
	for _, name := range cfg.Processors {
		processor, err := registry.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		pipeline.Add(processor)
	}
	return pipeline, nil
}
