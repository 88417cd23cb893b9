// Package ollama generates completions through a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "llama3.2"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig configures the Ollama LLM service. The zero value talks to
// a default local install.
type LLMConfig struct {
	// BaseURL points at the Ollama server. Defaults to http://localhost:11434.
	BaseURL string

	// Model selects the completion model. Defaults to llama3.2.
	Model string

	// Timeout bounds each HTTP request. Defaults to 120s.
	Timeout time.Duration
}

// LLMService talks to the Ollama /api/chat endpoint.
type LLMService struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// chatRequest is the /api/chat payload. Stream is always false; the
// adapter wants one complete reply, not a token stream.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// options holds generation parameters. Temperature is always sent:
// zero means deterministic sampling, not the model default.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewLLMService builds a service from cfg, filling in defaults for
// every unset field. Ollama needs no credentials, so construction
// cannot fail.
func NewLLMService(cfg LLMConfig) *LLMService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultLLMTimeout
	}

	return &LLMService{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		model:      model,
	}
}

// Generate produces a completion for the user message under the given
// system prompt. An empty system prompt sends the user message alone.
func (s *LLMService) Generate(ctx context.Context, system, user string, opts driven.GenerateOptions) (string, error) {
	payload := chatRequest{
		Model:    s.model,
		Messages: buildMessages(system, user),
		Stream:   false,
		Options: &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
		},
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/chat", bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ollama: %w", err)
	}
	defer resp.Body.Close()

	// Ollama error bodies are plain text, so the status check comes
	// before any JSON decoding.
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama: unexpected status %d: %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return parsed.Message.Content, nil
}

// ModelName returns the configured completion model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping verifies the server is reachable against /api/tags, which costs
// no inference time.
func (s *LLMService) Ping(ctx context.Context) error {
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
func (s *LLMService) Close() error {
	return nil
}

func buildMessages(system, user string) []chatMessage {
	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	return append(messages, chatMessage{Role: "user", Content: user})
}
