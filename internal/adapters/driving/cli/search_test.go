package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_Short(t *testing.T) {
	assert.Equal(t, "Search the document corpus", searchCmd.Short)
}

func TestSearchCmd_Long(t *testing.T) {
	assert.Contains(t, searchCmd.Long, "semantic search")
	assert.Contains(t, searchCmd.Long, "threshold")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execCLI(t, "search")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_HasThresholdFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("threshold")
	require.NotNil(t, flag, "threshold flag should exist")
	assert.Equal(t, "-1", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	t.Cleanup(setupTestServices())

	out, err := execCLI(t, "search", "test query")

	assert.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "First Document")
	assert.Contains(t, out, "0.95")
}

func TestSearchCmd_ExecutesWithLimitFlag(t *testing.T) {
	t.Cleanup(setupTestServices())

	out, err := execCLI(t, "search", "--limit", "25", "test query")

	assert.NoError(t, err)
	assert.Contains(t, out, "Results:")
}

func TestSearchCmd_ExecutesWithShortLimitFlag(t *testing.T) {
	t.Cleanup(setupTestServices())

	out, err := execCLI(t, "search", "-n", "3", "another query")

	assert.NoError(t, err)
	assert.Contains(t, out, "Results:")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	t.Cleanup(setupTestServices())
	t.Cleanup(func() { searchJSON = false })

	out, err := execCLI(t, "search", "--json", "test query")

	assert.NoError(t, err)
	// JSON uses capitalized field names from struct tags
	assert.Contains(t, out, "\"ID\"")
	assert.Contains(t, out, "\"Score\"")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	t.Cleanup(setupTestServices())
	searchService = nil

	_, err := execCLI(t, "search", "test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	t.Cleanup(setupTestServices())
	searchService = &mockSearchServiceError{}

	_, err := execCLI(t, "search", "test")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchJSON_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	require.NoError(t, outputSearchJSON(rootCmd, []domain.Candidate{}))
	assert.Contains(t, buf.String(), "[]")
}

func TestOutputSearchTable_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	require.NoError(t, outputSearchTable(rootCmd, []domain.Candidate{}))
	assert.Contains(t, buf.String(), "No results found")
}

func TestOutputSearchTable_PrefersRerankedScore(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	reranked := 0.88
	results := []domain.Candidate{
		{
			Document: domain.Document{ID: "doc-1", Title: "Test Document"},
			Score:    0.42,
			Reranked: &reranked,
		},
	}

	require.NoError(t, outputSearchTable(rootCmd, results))
	assert.Contains(t, buf.String(), "Test Document")
	assert.Contains(t, buf.String(), "0.88")
	assert.NotContains(t, buf.String(), "0.42")
}

func TestOutputSearchTable_WithoutTitle(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	results := []domain.Candidate{
		{
			Document: domain.Document{ID: "doc-123"},
			Score:    0.75,
		},
	}

	require.NoError(t, outputSearchTable(rootCmd, results))
	assert.Contains(t, buf.String(), "doc-123")
	assert.Contains(t, buf.String(), "0.75")
}

func TestContentPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{
			name:    "short content unchanged",
			content: "A short line.",
			max:     40,
			want:    "A short line.",
		},
		{
			name:    "first line only",
			content: "First line.\nSecond line.",
			max:     40,
			want:    "First line.",
		},
		{
			name:    "truncates at word boundary",
			content: "one two three four five",
			max:     12,
			want:    "one two...",
		},
		{
			name:    "empty content",
			content: "",
			max:     40,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentPreview(tt.content, tt.max))
		})
	}
}
