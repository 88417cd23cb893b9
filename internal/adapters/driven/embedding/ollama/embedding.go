// Package ollama embeds text through a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text native size
)

// Task prefixes for models that embed documents and queries
// differently. The nomic-embed family is trained with these.
const (
	taskDocument = "search_document"
	taskQuery    = "search_query"
)

// Config configures the Ollama embedding service. The zero value talks
// to a default local install.
type Config struct {
	// BaseURL points at the Ollama server. Defaults to http://localhost:11434.
	BaseURL string

	// Model selects the embedding model. Defaults to nomic-embed-text.
	Model string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration

	// Dimensions declares the model's vector size. Defaults to 768,
	// which fits the nomic-embed family.
	Dimensions int
}

// EmbeddingService talks to the Ollama /api/embeddings endpoint.
type EmbeddingService struct {
	httpClient *http.Client
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewEmbeddingService builds a service from cfg, filling in defaults
// for every unset field. Ollama needs no credentials, so construction
// cannot fail.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}

	return &EmbeddingService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
		dimensions: dims,
	}
}

// Embed returns the vector for a document text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, s.prefixed(taskDocument, text))
}

// EmbedQuery returns the vector for a search query. Models of the
// nomic-embed family receive the query task prefix; other models embed
// the query text as-is.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, s.prefixed(taskQuery, query))
}

// EmbedBatch embeds all texts in input order. Ollama has no native
// batch API, so texts go through one request each.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// prefixed attaches the task prefix when the model distinguishes
// document and query embeddings.
func (s *EmbeddingService) prefixed(task, text string) string {
	if !strings.HasPrefix(s.model, "nomic-embed") {
		return text
	}
	return task + ": " + text
}

func (s *EmbeddingService) embed(ctx context.Context, prompt string) ([]float32, error) {
	encoded, err := json.Marshal(embedRequest{Model: s.model, Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/embeddings", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	// Ollama error bodies are plain text, so the status check comes
	// before any JSON decoding.
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toFloat32(parsed.Embedding), nil
}

// Dimensions reports the length of the vectors this service produces.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping verifies the server is reachable against /api/tags, which costs
// no inference time.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: build ping request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama: ping returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Close satisfies the interface; the HTTP client holds nothing that
// needs releasing.
func (s *EmbeddingService) Close() error {
	return nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
