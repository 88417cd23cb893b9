package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// embedServer fakes the Ollama embeddings endpoint and records every
// prompt it receives. Each request returns a vector whose single
// element is the 1-based request number.
func embedServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()

	prompts := &[]string{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*prompts = append(*prompts, req.Prompt)

		resp := embedResponse{Embedding: []float64{float64(len(*prompts))}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	return server, prompts
}

func TestEmbed_PrefixesDocumentTask(t *testing.T) {
	server, prompts := embedServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	embedding, err := svc.Embed(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, []float32{1}, embedding)
	require.Len(t, *prompts, 1)
	assert.Equal(t, "search_document: hello world", (*prompts)[0])
}

func TestEmbedQuery_PrefixesQueryTask(t *testing.T) {
	server, prompts := embedServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.EmbedQuery(context.Background(), "how do deployments roll back")
	require.NoError(t, err)

	require.Len(t, *prompts, 1)
	assert.Equal(t, "search_query: how do deployments roll back", (*prompts)[0])
}

func TestEmbed_OtherModelsGetRawText(t *testing.T) {
	server, prompts := embedServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL, Model: "mxbai-embed-large"})

	_, err := svc.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	_, err = svc.EmbedQuery(context.Background(), "hello world")
	require.NoError(t, err)

	require.Len(t, *prompts, 2)
	assert.Equal(t, "hello world", (*prompts)[0])
	assert.Equal(t, "hello world", (*prompts)[1])
}

func TestEmbedBatch_OneRequestPerText(t *testing.T) {
	server, prompts := embedServer(t)
	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, embeddings, 3)
	assert.Equal(t, []float32{1}, embeddings[0])
	assert.Equal(t, []float32{2}, embeddings[1])
	assert.Equal(t, []float32{3}, embeddings[2])

	require.Len(t, *prompts, 3)
	assert.Equal(t, "search_document: b", (*prompts)[1])
}

func TestEmbed_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	svc := NewEmbeddingService(Config{BaseURL: server.URL})

	_, err := svc.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	svc := NewEmbeddingService(Config{BaseURL: server.URL})
	assert.Error(t, svc.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	svc := NewEmbeddingService(Config{})

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultDimensions, svc.Dimensions())
}
