package domain

// SearchOptions configures a semantic search.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// OwnerID scopes the search to a single owner.
	OwnerID string

	// ThemeID scopes the search to a topic collection.
	ThemeID string

	// Threshold is the minimum similarity score for a result.
	// Negative means the configured default applies.
	Threshold float64

	// Filters restricts results by exact metadata match.
	// A filter value may be a single value or a list.
	Filters map[string]any
}

// CountCriteria restricts a document count.
type CountCriteria struct {
	// OwnerID scopes the count to a single owner.
	OwnerID string

	// ThemeID scopes the count to a topic collection.
	ThemeID string

	// Metadata restricts the count by exact metadata match.
	Metadata map[string]string
}

// Matches returns true if the document satisfies the criteria.
func (c CountCriteria) Matches(doc Document) bool {
	if c.OwnerID != "" && doc.OwnerID != c.OwnerID {
		return false
	}
	if c.ThemeID != "" && doc.ThemeID != c.ThemeID {
		return false
	}
	for key, want := range c.Metadata {
		if doc.Metadata[key] != want {
			return false
		}
	}
	return true
}
