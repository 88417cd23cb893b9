package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

func chatServer(t *testing.T, reply string) (*httptest.Server, *[]byte) {
	t.Helper()

	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/chat", r.URL.Path)

		var err error
		body, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		resp := chatResponse{
			Message: chatMessage{Role: "assistant", Content: reply},
			Done:    true,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	return server, &body
}

func TestGenerate_SendsSystemAndUserMessages(t *testing.T) {
	server, body := chatServer(t, "the answer")
	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	answer, err := svc.Generate(context.Background(), "you are terse", "what is raft", driven.GenerateOptions{
		MaxTokens:   50,
		Temperature: 0.2,
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)

	var req chatRequest
	require.NoError(t, json.Unmarshal(*body, &req))
	require.Len(t, req.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "you are terse"}, req.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "what is raft"}, req.Messages[1])
	assert.False(t, req.Stream)
	require.NotNil(t, req.Options)
	assert.Equal(t, 50, req.Options.NumPredict)
	assert.InDelta(t, 0.2, req.Options.Temperature, 0.0001)
}

func TestGenerate_OmitsEmptySystemPrompt(t *testing.T) {
	server, body := chatServer(t, "hi")
	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "", "hello", driven.GenerateOptions{})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(*body, &raw))

	messages, ok := raw["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)

	// Zero temperature still goes on the wire: it means deterministic
	// sampling, not the model default.
	options, ok := raw["options"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, options, "temperature")
	assert.NotContains(t, options, "num_predict")
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	svc := NewLLMService(LLMConfig{BaseURL: server.URL})

	_, err := svc.Generate(context.Background(), "", "hello", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestLLMDefaults(t *testing.T) {
	svc := NewLLMService(LLMConfig{})
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
}
