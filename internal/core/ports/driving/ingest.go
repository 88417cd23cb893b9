package driving

import (
	"context"
)

// IngestService turns source texts into stored, embedded documents.
type IngestService interface {
	// IngestText chunks the request's content, embeds the chunks in
	// batches and stores each chunk as a document.
	IngestText(ctx context.Context, req IngestRequest) (*IngestResult, error)

	// IngestFile reads the file at path and ingests its content. The
	// request's Title and Source default to the file name and path.
	IngestFile(ctx context.Context, path string, req IngestRequest) (*IngestResult, error)
}

// IngestRequest describes a text to ingest.
type IngestRequest struct {
	// OwnerID scopes the resulting documents to an owner.
	OwnerID string

	// ThemeID assigns the resulting documents to a topic collection.
	ThemeID string

	// Title is the display title for the resulting documents.
	Title string

	// Source records where the content came from.
	Source string

	// Content is the text to ingest.
	Content string

	// Metadata is attached to every resulting document.
	Metadata map[string]string
}

// IngestResult summarises one ingestion.
type IngestResult struct {
	// DocumentIDs lists the stored documents, one per chunk.
	DocumentIDs []string

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// Title is the display title the documents were stored under.
	Title string
}
