package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDocument_HasEmbedding tests embedding presence detection
func TestDocument_HasEmbedding(t *testing.T) {
	assert.False(t, Document{}.HasEmbedding())
	assert.False(t, Document{Embedding: []float32{}}.HasEmbedding())
	assert.True(t, Document{Embedding: []float32{0.1, 0.2}}.HasEmbedding())
}

// TestDocument_DisplayTitle tests title fallback order
func TestDocument_DisplayTitle(t *testing.T) {
	tests := []struct {
		name     string
		doc      Document
		expected string
	}{
		{
			name:     "title wins",
			doc:      Document{ID: "d1", Title: "Notes", Source: "/tmp/notes.md"},
			expected: "Notes",
		},
		{
			name:     "source when title empty",
			doc:      Document{ID: "d1", Source: "/tmp/notes.md"},
			expected: "/tmp/notes.md",
		},
		{
			name:     "whitespace title falls through",
			doc:      Document{ID: "d1", Title: "   ", Source: "/tmp/notes.md"},
			expected: "/tmp/notes.md",
		},
		{
			name:     "id as last resort",
			doc:      Document{ID: "d1"},
			expected: "d1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.doc.DisplayTitle())
		})
	}
}

// TestDocument_MatchesFilters tests exact-match metadata filtering
func TestDocument_MatchesFilters(t *testing.T) {
	doc := Document{
		Metadata: map[string]string{
			"category": "science",
			"year":     "2024",
		},
	}

	tests := []struct {
		name     string
		filters  map[string]any
		expected bool
	}{
		{
			name:     "empty filters match everything",
			filters:  nil,
			expected: true,
		},
		{
			name:     "single value match",
			filters:  map[string]any{"category": "science"},
			expected: true,
		},
		{
			name:     "single value mismatch",
			filters:  map[string]any{"category": "history"},
			expected: false,
		},
		{
			name:     "missing key",
			filters:  map[string]any{"author": "anyone"},
			expected: false,
		},
		{
			name:     "list membership matches",
			filters:  map[string]any{"category": []string{"history", "science"}},
			expected: true,
		},
		{
			name:     "list without member",
			filters:  map[string]any{"category": []string{"history", "art"}},
			expected: false,
		},
		{
			name:     "untyped list membership matches",
			filters:  map[string]any{"category": []any{"history", "science"}},
			expected: true,
		},
		{
			name:     "non-string value compares by string form",
			filters:  map[string]any{"year": 2024},
			expected: true,
		},
		{
			name:     "all filters must match",
			filters:  map[string]any{"category": "science", "year": "1999"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, doc.MatchesFilters(tt.filters))
		})
	}
}

// TestDocument_MatchesFilters_NoMetadata tests filtering a bare document
func TestDocument_MatchesFilters_NoMetadata(t *testing.T) {
	doc := Document{}

	assert.True(t, doc.MatchesFilters(nil))
	assert.True(t, doc.MatchesFilters(map[string]any{}))
	assert.False(t, doc.MatchesFilters(map[string]any{"any": "thing"}))
}

// TestCountCriteria_Matches tests count criteria matching
func TestCountCriteria_Matches(t *testing.T) {
	doc := Document{
		OwnerID:  "alice",
		ThemeID:  "research",
		Metadata: map[string]string{"category": "science"},
	}

	assert.True(t, CountCriteria{}.Matches(doc))
	assert.True(t, CountCriteria{OwnerID: "alice"}.Matches(doc))
	assert.False(t, CountCriteria{OwnerID: "bob"}.Matches(doc))
	assert.True(t, CountCriteria{OwnerID: "alice", ThemeID: "research"}.Matches(doc))
	assert.False(t, CountCriteria{ThemeID: "cooking"}.Matches(doc))
	assert.True(t, CountCriteria{Metadata: map[string]string{"category": "science"}}.Matches(doc))
	assert.False(t, CountCriteria{Metadata: map[string]string{"category": "art"}}.Matches(doc))
}
