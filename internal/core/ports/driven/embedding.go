package driven

import "context"

// EmbeddingService turns text into vectors. Without one configured,
// semantic retrieval is disabled and ingestion stores documents
// unembedded.
type EmbeddingService interface {
	// Embed vectorises document text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery vectorises a search query. Models that distinguish
	// query from passage embeddings apply the query treatment here;
	// for everything else this matches Embed.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// EmbedBatch vectorises many texts in one provider call, which is
	// far cheaper than looping over Embed during ingestion.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the vector width the model produces. Stored
	// embeddings must match it to be comparable.
	Dimensions() int

	// ModelName identifies the underlying model, for logs and cache
	// keys.
	ModelName() string

	// Ping makes a minimal round trip to verify the provider is
	// reachable with the current credentials.
	Ping(ctx context.Context) error

	Close() error
}
