// Package ai builds the configured AI services (embedding, LLM,
// reranking) from application settings and validates them.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/custodia-labs/ansa/internal/adapters/driven/embedding"
	ollamaembed "github.com/custodia-labs/ansa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ansa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ansa/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/ansa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ansa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ansa/internal/adapters/driven/rerank/bm25"
	llmrerank "github.com/custodia-labs/ansa/internal/adapters/driven/rerank/llm"
	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

// pingTimeout bounds the connectivity check during startup and
// validation.
const pingTimeout = 5 * time.Second

// InitResult carries the AI services that came up, and what went wrong
// for those that did not.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Reranker         driven.Reranker
	PromptStore      driven.PromptStore // User-customisable prompt templates.
	Warnings         []string           // Non-fatal issues that caused fallback.
	FellBack         bool               // True if retrieval runs without embeddings.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates the configured AI services and validates connectivity.
// Failures surface as warnings and the affected capability stays nil,
// so the application degrades instead of refusing to start.
func Init(settings domain.AppSettings, prompts driven.PromptStore, log *logrus.Logger) *InitResult {
	result := &InitResult{PromptStore: prompts}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	}
	result.EmbeddingService = embedder

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	reranker, err := CreateReranker(settings.Rerank, llm, log)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.Reranker = reranker

	if aware, ok := reranker.(driven.PromptStoreAware); ok && prompts != nil {
		aware.SetPromptStore(prompts)
	}

	return result
}

// CreateAndValidateEmbeddingService builds the configured embedding
// service and confirms it is reachable. Unconfigured settings yield a
// nil service and no error.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'ansa config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := connectCheck(svc, domain.ErrEmbeddingUnavailable); err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateAndValidateLLMService builds the configured LLM service and
// confirms it is reachable. Unconfigured settings yield a nil service
// and no error.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'ansa config' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}
	if err := connectCheck(svc, domain.ErrLLMUnavailable); err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateEmbeddingService builds the embedding service the settings
// select, wrapped with request throttling when configured. Returns nil
// when no provider is configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var svc driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderOllama:
		dimensions := settings.Dimensions()
		if dimensions == 0 {
			dimensions = ollamaembed.DefaultDimensions
		}
		svc = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderOpenAI:
		created, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions(),
		})
		if err != nil {
			return nil, err
		}
		svc = created

	case domain.AIProviderAnthropic:
		return nil, errors.New("anthropic does not support embeddings, use ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	// NewRateLimited is a no-op when no throttle is configured.
	return embedding.NewRateLimited(svc, settings.RequestsPerSecond, settings.BatchSize), nil
}

// CreateLLMService builds the LLM service the settings select. Returns
// nil when no provider is configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateReranker builds the configured reranker. The LLM reranker
// needs a working LLM service; the BM25 reranker has no dependencies.
// Returns nil when reranking is disabled.
func CreateReranker(settings domain.RerankSettings, llm driven.LLMService, log *logrus.Logger) (driven.Reranker, error) {
	switch settings.Kind {
	case domain.RerankerNone, "":
		return nil, nil

	case domain.RerankerBM25:
		return bm25.New(), nil

	case domain.RerankerLLM:
		if llm == nil {
			return nil, fmt.Errorf("%w: llm reranker needs a configured LLM provider", domain.ErrLLMUnavailable)
		}
		return llmrerank.New(llm, log), nil

	default:
		return nil, fmt.Errorf("unsupported reranker kind: %s", settings.Kind)
	}
}

// connectable is the slice of a service the connectivity check needs.
type connectable interface {
	Ping(ctx context.Context) error
	Close() error
}

// connectCheck pings svc under the validation deadline, closing it on
// failure so callers never hold a service that cannot be reached.
func connectCheck(svc connectable, sentinel error) error {
	if err := pingWithTimeout(svc); err != nil {
		svc.Close()
		return fmt.Errorf("%w: service unreachable (%w). Run 'ansa config' to fix", sentinel, err)
	}
	return nil
}

// pingWithTimeout dials the service health check under the standard
// validation deadline.
func pingWithTimeout(svc interface{ Ping(context.Context) error }) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
