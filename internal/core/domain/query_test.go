package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCandidate_BestScore tests reranked score preference
func TestCandidate_BestScore(t *testing.T) {
	retrieval := Candidate{Score: 0.82}
	assert.InDelta(t, 0.82, retrieval.BestScore(), 1e-9)

	reranked := 0.45
	c := Candidate{Score: 0.82, Reranked: &reranked}
	assert.InDelta(t, 0.45, c.BestScore(), 1e-9)
}

// TestAnswer_JSONShape tests the wire shape consumed by clients
func TestAnswer_JSONShape(t *testing.T) {
	answer := Answer{
		Query:     "what is photosynthesis?",
		Response:  "Photosynthesis converts light into chemical energy.",
		HasAnswer: true,
		Sources: []SourceRef{
			{
				DocumentID: "doc-1",
				Title:      "Biology Notes",
				Source:     "/notes/bio.md",
				Snippet:    "...photosynthesis converts light...",
				Score:      0.91,
			},
		},
		Meta: AnswerMeta{
			DocumentCount:    1,
			UsedConversation: true,
			RerankingUsed:    true,
			RerankerType:     "bm25",
		},
	}

	data, err := json.Marshal(answer)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Contains(t, decoded, "query")
	assert.Contains(t, decoded, "response")
	assert.Contains(t, decoded, "has_answer")
	assert.Contains(t, decoded, "sources")
	assert.Contains(t, decoded, "metadata")

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, meta, "document_count")
	assert.Contains(t, meta, "used_conversation_context")
	assert.Contains(t, meta, "reranking_used")
	assert.Contains(t, meta, "reranker_type")
	assert.NotContains(t, meta, "error", "error should be omitted when empty")

	sources, ok := decoded["sources"].([]any)
	require.True(t, ok)
	require.Len(t, sources, 1)
	source, ok := sources[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doc-1", source["id"])
}

// TestAnswer_ErrorSerialised tests that degraded answers carry the error
func TestAnswer_ErrorSerialised(t *testing.T) {
	answer := Answer{
		Query:     "anything",
		Response:  "I encountered an error while processing your question. Please try again.",
		HasAnswer: false,
		Sources:   []SourceRef{},
		Meta:      AnswerMeta{Error: "embedding service unavailable"},
	}

	data, err := json.Marshal(answer)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	meta, ok := decoded["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "embedding service unavailable", meta["error"])
	assert.Equal(t, false, decoded["has_answer"])
}
