package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// Ensure Repository implements the repository interfaces.
var (
	_ driven.DocumentRepository = (*Repository)(nil)
	_ driven.BatchFetcher       = (*Repository)(nil)
	_ driven.Counter            = (*Repository)(nil)
)

// Reserved metadata attributes carrying document fields that Chroma has
// no native column for.
const (
	metaOwnerID   = "_owner_id"
	metaThemeID   = "_theme_id"
	metaTitle     = "_title"
	metaSource    = "_source"
	metaCreatedAt = "_created_at"
	metaUpdatedAt = "_updated_at"
)

// Config configures the Chroma connection.
type Config struct {
	// URL is the Chroma server endpoint.
	URL string

	// Collection is the collection name documents are stored in.
	Collection string
}

// Repository is a Chroma-backed implementation of
// driven.DocumentRepository.
type Repository struct {
	client     chromago.Client
	collection chromago.Collection
}

// New connects to the Chroma server and opens (or creates) the
// configured collection in cosine space.
func New(ctx context.Context, cfg Config) (*Repository, error) {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:8000"
	}
	if cfg.Collection == "" {
		cfg.Collection = "ansa"
	}

	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("create chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(ctx, cfg.Collection,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(chromago.NewStringAttribute("hnsw:space", "cosine")),
		),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open collection %q: %w", cfg.Collection, err)
	}

	return &Repository{client: client, collection: collection}, nil
}

// Store persists a new document.
func (r *Repository) Store(ctx context.Context, doc domain.Document) error {
	exists, err := r.exists(ctx, doc.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrAlreadyExists
	}
	return r.add(ctx, doc)
}

// Get retrieves a document by ID.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Document, error) {
	result, err := r.collection.Get(ctx,
		chromago.WithIDsGet(chromago.DocumentID(id)),
		chromago.WithIncludeGet(chromago.IncludeDocuments, chromago.IncludeMetadatas, chromago.IncludeEmbeddings),
	)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	docs := resultDocuments(result)
	if len(docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &docs[0], nil
}

// GetMany retrieves the documents for the given IDs in one round trip.
// Missing IDs are skipped, not errors.
func (r *Repository) GetMany(ctx context.Context, ids []string) ([]domain.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	docIDs := make([]chromago.DocumentID, len(ids))
	for i, id := range ids {
		docIDs[i] = chromago.DocumentID(id)
	}
	result, err := r.collection.Get(ctx,
		chromago.WithIDsGet(docIDs...),
		chromago.WithIncludeGet(chromago.IncludeDocuments, chromago.IncludeMetadatas, chromago.IncludeEmbeddings),
	)
	if err != nil {
		return nil, fmt.Errorf("get documents: %w", err)
	}
	return resultDocuments(result), nil
}

// Update replaces an existing document. Chroma's add cannot change a
// stored row, so the old row is deleted and the document re-added.
func (r *Repository) Update(ctx context.Context, doc domain.Document) error {
	exists, err := r.exists(ctx, doc.ID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.collection.Delete(ctx, chromago.WithIDsDelete(chromago.DocumentID(doc.ID))); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return r.add(ctx, doc)
}

// Delete removes a document.
func (r *Repository) Delete(ctx context.Context, id string) error {
	exists, err := r.exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	if err := r.collection.Delete(ctx, chromago.WithIDsDelete(chromago.DocumentID(id))); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// SearchSimilar runs a server-side similarity query, scoped to owner
// and theme when set. Matches come back scored with the cosine
// complement of the reported distance.
func (r *Repository) SearchSimilar(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]driven.SimilarityMatch, error) {
	queryOpts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(embedding)),
	}
	if opts.Limit > 0 {
		queryOpts = append(queryOpts, chromago.WithNResults(opts.Limit))
	}
	if where := scopeFilter(opts.OwnerID, opts.ThemeID); where != nil {
		queryOpts = append(queryOpts, chromago.WithWhereQuery(where))
	}

	results, err := r.collection.Query(ctx, queryOpts...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	idGroups := results.GetIDGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}
	docGroups := results.GetDocumentsGroups()
	metaGroups := results.GetMetadatasGroups()
	distGroups := results.GetDistancesGroups()

	matches := make([]driven.SimilarityMatch, 0, len(idGroups[0]))
	for i, id := range idGroups[0] {
		var content string
		if len(docGroups) > 0 && i < len(docGroups[0]) {
			content = docGroups[0][i].ContentString()
		}
		var meta chromago.DocumentMetadata
		if len(metaGroups) > 0 && i < len(metaGroups[0]) {
			meta = metaGroups[0][i]
		}
		var score float64
		if len(distGroups) > 0 && i < len(distGroups[0]) {
			score = 1 - float64(distGroups[0][i])
		}
		matches = append(matches, driven.SimilarityMatch{
			Document: documentFromChroma(string(id), content, meta),
			Score:    score,
			Scored:   true,
		})
	}
	return matches, nil
}

// GetAll returns every document, scoped to owner and theme when set.
func (r *Repository) GetAll(ctx context.Context, ownerID, themeID string) ([]domain.Document, error) {
	opts := []chromago.CollectionGetOption{
		chromago.WithIncludeGet(chromago.IncludeDocuments, chromago.IncludeMetadatas, chromago.IncludeEmbeddings),
	}
	if where := scopeFilter(ownerID, themeID); where != nil {
		opts = append(opts, chromago.WithWhereGet(where))
	}
	result, err := r.collection.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return resultDocuments(result), nil
}

// Count returns the number of documents matching the criteria. An
// unrestricted count runs server-side; anything narrower fetches
// metadata and matches in Go.
func (r *Repository) Count(ctx context.Context, criteria domain.CountCriteria) (int, error) {
	if criteria.OwnerID == "" && criteria.ThemeID == "" && len(criteria.Metadata) == 0 {
		count, err := r.collection.Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("count documents: %w", err)
		}
		return int(count), nil
	}

	opts := []chromago.CollectionGetOption{
		chromago.WithIncludeGet(chromago.IncludeMetadatas),
	}
	if where := scopeFilter(criteria.OwnerID, criteria.ThemeID); where != nil {
		opts = append(opts, chromago.WithWhereGet(where))
	}
	result, err := r.collection.Get(ctx, opts...)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}

	count := 0
	for _, doc := range resultDocuments(result) {
		if criteria.Matches(doc) {
			count++
		}
	}
	return count, nil
}

// Close closes the connection to the Chroma server.
func (r *Repository) Close() error {
	return r.client.Close()
}

func (r *Repository) exists(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.Get(ctx, chromago.WithIDsGet(chromago.DocumentID(id)))
	if err != nil {
		return false, fmt.Errorf("get document: %w", err)
	}
	return len(result.GetIDs()) > 0, nil
}

func (r *Repository) add(ctx context.Context, doc domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	opts := []chromago.CollectionAddOption{
		chromago.WithIDs(chromago.DocumentID(doc.ID)),
		chromago.WithTexts(doc.Content),
		chromago.WithMetadatas(documentMetadata(doc)),
	}
	if doc.HasEmbedding() {
		opts = append(opts, chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(doc.Embedding)))
	}
	if err := r.collection.Add(ctx, opts...); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// ==================== Mapping helpers ====================

// scopeFilter builds the where clause for owner and theme scoping.
// Returns nil when neither is set.
func scopeFilter(ownerID, themeID string) chromago.WhereFilter {
	var filters []chromago.WhereClause
	if ownerID != "" {
		filters = append(filters, chromago.EqString(metaOwnerID, ownerID))
	}
	if themeID != "" {
		filters = append(filters, chromago.EqString(metaThemeID, themeID))
	}
	switch len(filters) {
	case 0:
		return nil
	case 1:
		return filters[0]
	default:
		return chromago.And(filters...)
	}
}

func documentMetadata(doc domain.Document) chromago.DocumentMetadata {
	attrs := []*chromago.MetaAttribute{
		chromago.NewStringAttribute(metaOwnerID, doc.OwnerID),
		chromago.NewStringAttribute(metaThemeID, doc.ThemeID),
		chromago.NewStringAttribute(metaTitle, doc.Title),
		chromago.NewStringAttribute(metaSource, doc.Source),
		chromago.NewStringAttribute(metaCreatedAt, doc.CreatedAt.UTC().Format(time.RFC3339Nano)),
		chromago.NewStringAttribute(metaUpdatedAt, doc.UpdatedAt.UTC().Format(time.RFC3339Nano)),
	}
	for key, value := range doc.Metadata {
		attrs = append(attrs, chromago.NewStringAttribute(key, value))
	}
	return chromago.NewDocumentMetadata(attrs...)
}

// metadataToMap converts Chroma metadata to a plain map. The attribute
// accessors are not exported, so the conversion goes through JSON.
func metadataToMap(meta chromago.DocumentMetadata) map[string]any {
	if meta == nil {
		return nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func documentFromChroma(id, content string, meta chromago.DocumentMetadata) domain.Document {
	doc := domain.Document{ID: id, Content: content}
	for key, value := range metadataToMap(meta) {
		text, ok := value.(string)
		if !ok {
			text = fmt.Sprint(value)
		}
		switch key {
		case metaOwnerID:
			doc.OwnerID = text
		case metaThemeID:
			doc.ThemeID = text
		case metaTitle:
			doc.Title = text
		case metaSource:
			doc.Source = text
		case metaCreatedAt:
			if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
				doc.CreatedAt = ts
			}
		case metaUpdatedAt:
			if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
				doc.UpdatedAt = ts
			}
		default:
			if doc.Metadata == nil {
				doc.Metadata = make(map[string]string)
			}
			doc.Metadata[key] = text
		}
	}
	return doc
}

func resultDocuments(result chromago.GetResult) []domain.Document {
	ids := result.GetIDs()
	contents := result.GetDocuments()
	metadatas := result.GetMetadatas()
	vectors := result.GetEmbeddings()

	docs := make([]domain.Document, 0, len(ids))
	for i, id := range ids {
		var content string
		if i < len(contents) {
			content = contents[i].ContentString()
		}
		var meta chromago.DocumentMetadata
		if i < len(metadatas) {
			meta = metadatas[i]
		}
		doc := documentFromChroma(string(id), content, meta)
		if i < len(vectors) && vectors[i] != nil {
			doc.Embedding = vectors[i].ContentAsFloat32()
		}
		docs = append(docs, doc)
	}
	return docs
}
