package domain

import (
	"fmt"
	"strings"
	"time"
)

// Document represents a stored document with its embedding and metadata.
// It is the unit of storage, retrieval and citation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// OwnerID scopes the document to a single owner.
	OwnerID string

	// ThemeID groups an owner's documents into a topic collection.
	ThemeID string

	// Title is the human-readable title.
	Title string

	// Source is the original location (file path, URL, etc).
	Source string

	// Content is the full text content.
	Content string

	// Embedding is the vector representation for semantic search.
	// Nil or empty means the document has not been embedded yet.
	Embedding []float32

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]string

	// CreatedAt is when the document was first stored.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// HasEmbedding returns true if the document carries an embedding vector.
func (d Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// DisplayTitle returns the title, falling back to the source and
// finally the ID when neither is set.
func (d Document) DisplayTitle() string {
	if t := strings.TrimSpace(d.Title); t != "" {
		return t
	}
	if s := strings.TrimSpace(d.Source); s != "" {
		return s
	}
	return d.ID
}

// MatchesFilters returns true if the document's metadata satisfies every
// filter. A filter value may be a single value or a list; for a list,
// membership counts as a match. A document with no metadata only matches
// an empty filter set.
func (d Document) MatchesFilters(filters map[string]any) bool {
	for key, want := range filters {
		got, ok := d.Metadata[key]
		if !ok {
			return false
		}
		if !filterValueMatches(got, want) {
			return false
		}
	}
	return true
}

func filterValueMatches(got string, want any) bool {
	switch w := want.(type) {
	case string:
		return got == w
	case []string:
		for _, v := range w {
			if got == v {
				return true
			}
		}
		return false
	case []any:
		for _, v := range w {
			if filterValueMatches(got, v) {
				return true
			}
		}
		return false
	default:
		return got == fmt.Sprint(w)
	}
}

// Chunk represents a contiguous slice of a source text.
// Start and End are byte offsets into the source, so
// source[Start:End] == Text. Consecutive chunks may overlap.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Start is the byte offset of the chunk within the source text.
	Start int

	// End is the byte offset one past the last byte of the chunk.
	End int
}
