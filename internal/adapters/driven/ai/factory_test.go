package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansa/internal/core/domain"
)

func TestInitResult_Close_NilServices(t *testing.T) {
	result := &InitResult{}
	result.Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		errContains string
	}{
		{
			name:     "nil settings",
			settings: nil,
			wantNil:  true,
		},
		{
			name:     "unconfigured settings",
			settings: &domain.EmbeddingSettings{},
			wantNil:  true,
		},
		{
			name: "ollama",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "throttle settings still produce a service",
			settings: &domain.EmbeddingSettings{
				Provider:          domain.AIProviderOllama,
				Model:             "nomic-embed-text",
				RequestsPerSecond: 5,
				BatchSize:         16,
			},
		},
		{
			name: "anthropic has no embeddings",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantNil:     true,
			errContains: "anthropic does not support embeddings",
		},
		{
			// An unknown provider fails IsConfigured, so it reads as
			// unconfigured rather than as an error.
			name: "unknown provider",
			settings: &domain.EmbeddingSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(tt.settings)
			if svc != nil {
				defer svc.Close()
			}

			if tt.errContains != "" {
				assert.ErrorContains(t, err, tt.errContains)
			} else {
				assert.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.LLMSettings
		wantNil  bool
	}{
		{name: "nil settings", settings: nil, wantNil: true},
		{name: "unconfigured settings", settings: &domain.LLMSettings{}, wantNil: true},
		{
			name: "ollama",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "llama3.2",
			},
		},
		{
			name: "openai",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "gpt-4o-mini",
			},
		},
		{
			name: "anthropic",
			settings: &domain.LLMSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
				Model:    "claude-3-5-sonnet-latest",
			},
		},
		{
			name: "unknown provider",
			settings: &domain.LLMSettings{
				Provider: "unknown",
				APIKey:   "test-key",
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if svc != nil {
				defer svc.Close()
			}

			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, svc)
			} else {
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestCreateReranker(t *testing.T) {
	llm, err := CreateLLMService(&domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		Model:    "llama3.2",
	})
	require.NoError(t, err)
	defer llm.Close()

	t.Run("none and empty kind disable reranking", func(t *testing.T) {
		for _, kind := range []domain.RerankerKind{domain.RerankerNone, ""} {
			reranker, err := CreateReranker(domain.RerankSettings{Kind: kind}, llm, nil)
			require.NoError(t, err)
			assert.Nil(t, reranker)
		}
	})

	t.Run("bm25 needs no llm", func(t *testing.T) {
		reranker, err := CreateReranker(domain.RerankSettings{Kind: domain.RerankerBM25}, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, reranker)
		assert.Equal(t, "bm25", reranker.Name())
	})

	t.Run("llm reranker wraps the llm service", func(t *testing.T) {
		reranker, err := CreateReranker(domain.RerankSettings{Kind: domain.RerankerLLM}, llm, nil)
		require.NoError(t, err)
		require.NotNil(t, reranker)
		assert.Equal(t, "llm", reranker.Name())
	})

	t.Run("llm reranker without an llm", func(t *testing.T) {
		reranker, err := CreateReranker(domain.RerankSettings{Kind: domain.RerankerLLM}, nil, nil)
		assert.Nil(t, reranker)
		require.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.Contains(t, err.Error(), "needs a configured LLM provider")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := CreateReranker(domain.RerankSettings{Kind: "cross-encoder"}, llm, nil)
		assert.ErrorContains(t, err, "unsupported reranker kind")
	})
}

func TestInit_Unconfigured(t *testing.T) {
	result := Init(domain.DefaultAppSettings(), nil, nil)
	defer result.Close()

	assert.Nil(t, result.EmbeddingService)
	assert.Nil(t, result.LLMService)
	assert.Nil(t, result.Reranker)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FellBack, "no fallback without configured providers")
}

func TestInit_RerankerWarnsWithoutLLM(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Rerank.Kind = domain.RerankerLLM

	result := Init(settings, nil, nil)
	defer result.Close()

	assert.Nil(t, result.Reranker)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "needs a configured LLM provider")
}

func TestInit_BM25RerankerWithoutProviders(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Rerank.Kind = domain.RerankerBM25

	result := Init(settings, nil, nil)
	defer result.Close()

	require.NotNil(t, result.Reranker)
	assert.Equal(t, "bm25", result.Reranker.Name())
	assert.Empty(t, result.Warnings)
}

func TestCreateAndValidateEmbeddingService(t *testing.T) {
	t.Run("nil and unconfigured pass without a service", func(t *testing.T) {
		for _, settings := range []*domain.EmbeddingSettings{nil, {}} {
			svc, err := CreateAndValidateEmbeddingService(settings)
			require.NoError(t, err)
			assert.Nil(t, svc)
		}
	})

	t.Run("creation failure wraps ErrEmbeddingUnavailable", func(t *testing.T) {
		svc, err := CreateAndValidateEmbeddingService(&domain.EmbeddingSettings{
			Provider: domain.AIProviderAnthropic,
			APIKey:   "test-key",
		})
		assert.Nil(t, svc)
		require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
		assert.Contains(t, err.Error(), "Run 'ansa config' to fix")
	})
}

func TestCreateAndValidateLLMService(t *testing.T) {
	for _, settings := range []*domain.LLMSettings{
		nil,
		{},
		{Provider: "unknown", APIKey: "test-key"},
	} {
		svc, err := CreateAndValidateLLMService(settings)
		require.NoError(t, err)
		assert.Nil(t, svc)
	}
}

func TestCreateEmbeddingService_Dimensions(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "nomic-embed-text",
	})
	require.NoError(t, err)
	require.NotNil(t, svc)
	defer svc.Close()
	assert.Equal(t, 768, svc.Dimensions())

	unknown, err := CreateEmbeddingService(&domain.EmbeddingSettings{
		Provider: domain.AIProviderOllama,
		Model:    "custom-model-unknown",
	})
	require.NoError(t, err)
	require.NotNil(t, unknown)
	defer unknown.Close()
	assert.NotZero(t, unknown.Dimensions(), "unknown models fall back to a usable size")
}
