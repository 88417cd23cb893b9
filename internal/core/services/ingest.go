package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// defaultEmbedBatchSize bounds one embedding request when the
// configuration sets none.
const defaultEmbedBatchSize = 16

// IngestService turns source texts into stored, embedded documents:
// chunk the content through the post-processor pipeline, embed the
// chunks in batches, and store each chunk as its own document linked
// to the ingestion by metadata.
type IngestService struct {
	documents driving.DocumentService
	pipeline  driven.PostProcessorPipeline
	embedder  driven.EmbeddingService
	batchSize int
	log       *logrus.Logger
}

// NewIngestService creates an ingest service. The embedder is
// optional; without one, chunk documents are stored unembedded and
// picked up when the store embeds on write.
func NewIngestService(
	documents driving.DocumentService,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	batchSize int,
	log *logrus.Logger,
) *IngestService {
	if batchSize == 0 {
		batchSize = defaultEmbedBatchSize
	}
	if log == nil {
		log = logrus.New()
	}
	return &IngestService{
		documents: documents,
		pipeline:  pipeline,
		embedder:  embedder,
		batchSize: batchSize,
		log:       log,
	}
}

// IngestText chunks the request's content, embeds the chunks in
// batches and stores each chunk as a document. Every stored document
// carries the shared parent ID and its chunk index in metadata.
func (s *IngestService) IngestText(ctx context.Context, req driving.IngestRequest) (*driving.IngestResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, fmt.Errorf("%w: content is empty", domain.ErrInvalidInput)
	}

	parentID := uuid.NewString()
	source := &domain.Document{
		ID:      parentID,
		OwnerID: req.OwnerID,
		ThemeID: req.ThemeID,
		Title:   req.Title,
		Source:  req.Source,
		Content: req.Content,
	}

	chunks, err := s.pipeline.Process(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("chunk content: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: content produced no chunks", domain.ErrInvalidInput)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		doc := domain.Document{
			OwnerID:  req.OwnerID,
			ThemeID:  req.ThemeID,
			Title:    req.Title,
			Source:   req.Source,
			Content:  chunk.Text,
			Metadata: chunkMetadata(req.Metadata, parentID, i),
		}
		if embeddings != nil {
			doc.Embedding = embeddings[i]
		}

		id, err := s.documents.Store(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("store chunk %d of %d: %w", i+1, len(chunks), err)
		}
		ids = append(ids, id)
	}

	s.log.WithFields(logrus.Fields{
		"parent": parentID,
		"chunks": len(chunks),
		"title":  req.Title,
	}).Info("Ingested text")

	return &driving.IngestResult{
		DocumentIDs: ids,
		ChunkCount:  len(chunks),
		Title:       req.Title,
	}, nil
}

// IngestFile reads the file at path and ingests its content.
func (s *IngestService) IngestFile(ctx context.Context, path string, req driving.IngestRequest) (*driving.IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if req.Title == "" {
		req.Title = filepath.Base(path)
	}
	if req.Source == "" {
		req.Source = path
	}
	req.Content = string(data)

	return s.IngestText(ctx, req)
}

// embedTexts embeds the texts in bounded batches. A nil embedder
// yields nil embeddings; the document store embeds on write instead,
// one round trip per chunk.
func (s *IngestService) embedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.embedder == nil {
		return nil, nil
	}
	if s.batchSize < 1 {
		return nil, fmt.Errorf("%w: batch size %d", domain.ErrInvalidInput, s.batchSize)
	}

	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vectors, err := s.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", start, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: embedded %d texts, got %d vectors",
				domain.ErrInvalidInput, len(batch), len(vectors))
		}
		embeddings = append(embeddings, vectors...)
	}
	return embeddings, nil
}

// chunkMetadata copies the request metadata and adds the chunk's
// lineage keys.
func chunkMetadata(base map[string]string, parentID string, index int) map[string]string {
	meta := make(map[string]string, len(base)+2)
	for k, v := range base {
		meta[k] = v
	}
	meta["parent_id"] = parentID
	meta["chunk_index"] = strconv.Itoa(index)
	return meta
}
