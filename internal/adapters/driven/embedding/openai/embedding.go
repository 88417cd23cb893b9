// Package openai embeds text through the OpenAI embeddings API, or any
// compatible endpoint such as Azure OpenAI.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// fallbackDimensions covers models the dimensions table does not know.
	fallbackDimensions = 1536
)

// modelDimensions maps each known embedding model to its native vector
// size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config configures the OpenAI embedding service. Only APIKey is
// required; everything else has a sensible default.
type Config struct {
	APIKey string

	// BaseURL points at an OpenAI-compatible endpoint. Defaults to the
	// public API.
	BaseURL string

	// Model selects the embedding model. Defaults to text-embedding-3-small.
	Model string

	// Timeout bounds each HTTP request. Defaults to 60s.
	Timeout time.Duration

	// Dimensions shortens the returned vectors. Honoured only by the
	// v3 models; other models ignore it.
	Dimensions int
}

// EmbeddingService talks to the OpenAI embeddings endpoint.
type EmbeddingService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Data  []embeddingRow `json:"data"`
	Error *apiError      `json:"error,omitempty"`
}

// embeddingRow is one vector in a batch reply. Rows may arrive in any
// order; Index says which input each one belongs to.
type embeddingRow struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewEmbeddingService builds a service from cfg, filling in defaults
// for every field except the API key.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	dims := cfg.Dimensions
	if dims == 0 {
		dims = modelDimensions[model]
	}
	if dims == 0 {
		dims = fallbackDimensions
	}

	return &EmbeddingService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: dims,
	}, nil
}

// Embed returns the vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("openai: no embedding returned")
	}
	return vectors[0], nil
}

// EmbedQuery embeds a search query. OpenAI models make no
// document/query distinction, so this is plain Embed.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.Embed(ctx, query)
}

// EmbedBatch embeds all texts in one API call and returns the vectors
// in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := embedRequest{Model: s.model, Input: texts}
	if s.supportsDimensions() {
		payload.Dimensions = s.dimensions
	}

	var parsed embedResponse
	status, body, err := s.postJSON(ctx, "/embeddings", payload, &parsed)
	if status == http.StatusTooManyRequests {
		return nil, fmt.Errorf("openai: %w", domain.ErrRateLimited)
	}
	if err != nil {
		return nil, err
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("openai: %s", parsed.Error.Message)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("openai: unexpected status %d: %s", status, body)
	}

	vectors := make([][]float32, len(texts))
	for _, row := range parsed.Data {
		if row.Index < 0 || row.Index >= len(vectors) {
			continue
		}
		vectors[row.Index] = toFloat32(row.Embedding)
	}
	return vectors, nil
}

// Dimensions reports the length of the vectors this service produces.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the configured embedding model.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping verifies reachability and key validity against /models, which
// costs no inference tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: build ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("openai: ping returned status %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Close satisfies the interface; the HTTP client holds nothing that
// needs releasing.
func (s *EmbeddingService) Close() error {
	return nil
}

// supportsDimensions reports whether the model accepts a dimensions
// override. Only the v3 family does.
func (s *EmbeddingService) supportsDimensions() bool {
	return s.dimensions > 0 && strings.HasPrefix(s.model, "text-embedding-3")
}

// postJSON sends payload to path and decodes the reply into out. The
// status and raw body come back too so callers can report API-level
// failures.
func (s *EmbeddingService) postJSON(ctx context.Context, path string, payload, out any) (int, []byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, body, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func toFloat32(values []float64) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out
}
