package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

// Processor splits document content into chunks using the configured
// strategy. It implements the PostProcessor interface.
type Processor struct {
	mode       domain.ChunkMode
	chunkSize  int
	overlap    int
	minSize    int
	maxSize    int
	separator  string
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMode selects the chunking strategy.
func WithMode(mode domain.ChunkMode) Option {
	return func(p *Processor) {
		if mode.IsValid() {
			p.mode = mode
		}
	}
}

// WithChunkSize sets the flat-mode chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the flat-mode overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the semantic-mode minimum chunk size.
func WithMinChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.minSize = size
		}
	}
}

// WithMaxChunkSize sets the semantic-mode maximum chunk size.
func WithMaxChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.maxSize = size
		}
	}
}

// WithSeparator sets the flat-mode split boundary.
func WithSeparator(sep string) Option {
	return func(p *Processor) {
		if sep != "" {
			p.separator = sep
		}
	}
}

// WithSeparators sets the semantic-mode separator hierarchy.
func WithSeparators(seps []string) Option {
	return func(p *Processor) {
		if len(seps) > 0 {
			p.separators = seps
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		mode:       domain.ChunkModeSemantic,
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		minSize:    DefaultMinChunkSize,
		maxSize:    DefaultMaxChunkSize,
		separator:  DefaultSeparator,
		separators: DefaultSeparators(),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	if p.maxSize < p.minSize {
		p.maxSize = p.minSize * 2
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc.Content == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	var texts []string
	switch p.mode {
	case domain.ChunkModeFlat:
		texts = NewFlat(p.chunkSize, p.overlap, p.separator).Chunk(doc.Content)
	default:
		texts = NewSemantic(p.minSize, p.maxSize, p.separators).Chunk(doc.Content)
	}

	return locate(doc.Content, texts), nil
}

// locate maps each chunk back to its span in the source text. Chunkers
// emit contiguous substrings in order, so scanning forward from the
// previous chunk's start always finds the next one.
func locate(source string, texts []string) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, len(texts))
	cursor := 0
	for _, text := range texts {
		start := -1
		if idx := strings.Index(source[cursor:], text); idx >= 0 {
			start = cursor + idx
			cursor = start
		}
		end := start
		if start >= 0 {
			end = start + len(text)
		}
		chunks = append(chunks, domain.Chunk{Text: text, Start: start, End: end})
	}
	return chunks
}
