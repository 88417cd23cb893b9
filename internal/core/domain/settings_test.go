package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRerankerKind_IsValid tests all valid and invalid reranker kinds
func TestRerankerKind_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		kind     RerankerKind
		expected bool
	}{
		{
			name:     "none is valid",
			kind:     RerankerNone,
			expected: true,
		},
		{
			name:     "bm25 is valid",
			kind:     RerankerBM25,
			expected: true,
		},
		{
			name:     "llm is valid",
			kind:     RerankerLLM,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			kind:     RerankerKind(""),
			expected: false,
		},
		{
			name:     "unknown kind is invalid",
			kind:     RerankerKind("cross_encoder"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsValid())
		})
	}
}

// TestRerankerKind_RequiresLLM tests LLM requirements per kind
func TestRerankerKind_RequiresLLM(t *testing.T) {
	assert.False(t, RerankerNone.RequiresLLM())
	assert.False(t, RerankerBM25.RequiresLLM())
	assert.True(t, RerankerLLM.RequiresLLM())
}

// TestRepositoryKind_IsValid tests all valid and invalid repository kinds
func TestRepositoryKind_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		kind     RepositoryKind
		expected bool
	}{
		{
			name:     "memory is valid",
			kind:     RepositoryMemory,
			expected: true,
		},
		{
			name:     "sqlite is valid",
			kind:     RepositorySQLite,
			expected: true,
		},
		{
			name:     "chroma is valid",
			kind:     RepositoryChroma,
			expected: true,
		},
		{
			name:     "empty string is invalid",
			kind:     RepositoryKind(""),
			expected: false,
		},
		{
			name:     "unknown kind is invalid",
			kind:     RepositoryKind("postgres"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.IsValid())
		})
	}
}

// TestRepositoryKind_Persistent tests persistence per backend
func TestRepositoryKind_Persistent(t *testing.T) {
	assert.False(t, RepositoryMemory.Persistent())
	assert.True(t, RepositorySQLite.Persistent())
	assert.True(t, RepositoryChroma.Persistent())
}

// TestChunkMode_IsValid tests all valid and invalid chunk modes
func TestChunkMode_IsValid(t *testing.T) {
	assert.True(t, ChunkModeFlat.IsValid())
	assert.True(t, ChunkModeSemantic.IsValid())
	assert.False(t, ChunkMode("").IsValid())
	assert.False(t, ChunkMode("recursive").IsValid())
}

// TestDescriptions_UnknownValues tests that invalid enum values describe as Unknown
func TestDescriptions_UnknownValues(t *testing.T) {
	assert.Equal(t, unknownDescription, RerankerKind("invalid").Description())
	assert.Equal(t, unknownDescription, RepositoryKind("invalid").Description())
	assert.Equal(t, unknownDescription, ChunkMode("invalid").Description())
	assert.Equal(t, unknownDescription, AIProvider("invalid").Description())
}

// TestChunkingSettings_Validate tests chunking parameter validation
func TestChunkingSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings ChunkingSettings
		wantErr  bool
	}{
		{
			name:     "defaults are valid",
			settings: DefaultAppSettings().Chunking,
			wantErr:  false,
		},
		{
			name: "flat mode is valid",
			settings: ChunkingSettings{
				Mode:         ChunkModeFlat,
				ChunkSize:    500,
				Overlap:      50,
				MinChunkSize: 100,
				MaxChunkSize: 2000,
			},
			wantErr: false,
		},
		{
			name: "invalid mode",
			settings: ChunkingSettings{
				Mode:         ChunkMode("recursive"),
				ChunkSize:    500,
				MinChunkSize: 100,
				MaxChunkSize: 2000,
			},
			wantErr: true,
		},
		{
			name: "zero chunk size",
			settings: ChunkingSettings{
				Mode:         ChunkModeFlat,
				ChunkSize:    0,
				MinChunkSize: 100,
				MaxChunkSize: 2000,
			},
			wantErr: true,
		},
		{
			name: "overlap equals chunk size",
			settings: ChunkingSettings{
				Mode:         ChunkModeFlat,
				ChunkSize:    200,
				Overlap:      200,
				MinChunkSize: 100,
				MaxChunkSize: 2000,
			},
			wantErr: true,
		},
		{
			name: "negative overlap",
			settings: ChunkingSettings{
				Mode:         ChunkModeFlat,
				ChunkSize:    200,
				Overlap:      -1,
				MinChunkSize: 100,
				MaxChunkSize: 2000,
			},
			wantErr: true,
		},
		{
			name: "max below min",
			settings: ChunkingSettings{
				Mode:         ChunkModeSemantic,
				ChunkSize:    1000,
				MinChunkSize: 500,
				MaxChunkSize: 100,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestQuerySettings_Validate tests query parameter validation
func TestQuerySettings_Validate(t *testing.T) {
	valid := DefaultAppSettings().Query
	assert.NoError(t, valid.Validate())

	zeroTopK := valid
	zeroTopK.TopK = 0
	assert.ErrorIs(t, zeroTopK.Validate(), ErrInvalidInput)

	badThreshold := valid
	badThreshold.ScoreThreshold = 1.5
	assert.ErrorIs(t, badThreshold.Validate(), ErrInvalidInput)

	zeroSnippet := valid
	zeroSnippet.SnippetLength = 0
	assert.ErrorIs(t, zeroSnippet.Validate(), ErrInvalidInput)
}

// TestEmbeddingSettings_Dimensions tests model dimension lookup
func TestEmbeddingSettings_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		expected int
	}{
		{
			name:     "nomic-embed-text",
			model:    "nomic-embed-text",
			expected: 768,
		},
		{
			name:     "text-embedding-3-small",
			model:    "text-embedding-3-small",
			expected: 1536,
		},
		{
			name:     "unknown model has no dimensions",
			model:    "mystery-model",
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := EmbeddingSettings{Model: tt.model}
			assert.Equal(t, tt.expected, settings.Dimensions())
		})
	}
}

// TestDefaultAppSettings tests default settings creation
func TestDefaultAppSettings(t *testing.T) {
	settings := DefaultAppSettings()

	// AI providers should be unconfigured by default
	assert.Empty(t, settings.Embedding.Provider)
	assert.False(t, settings.Embedding.IsConfigured())
	assert.Equal(t, 16, settings.Embedding.BatchSize)
	assert.Empty(t, settings.LLM.Provider)
	assert.False(t, settings.LLM.IsConfigured())

	// Chunking defaults
	assert.Equal(t, ChunkModeSemantic, settings.Chunking.Mode)
	assert.Equal(t, 1000, settings.Chunking.ChunkSize)
	assert.Equal(t, 200, settings.Chunking.Overlap)
	assert.Equal(t, 100, settings.Chunking.MinChunkSize)
	assert.Equal(t, 2000, settings.Chunking.MaxChunkSize)

	// Query defaults
	assert.Equal(t, 5, settings.Query.TopK)
	assert.InDelta(t, 0.7, settings.Query.ScoreThreshold, 1e-9)
	assert.InDelta(t, 0.3, settings.Query.MinRerankScore, 1e-9)
	assert.Equal(t, 10, settings.Query.ContextMessages)
	assert.Equal(t, 200, settings.Query.SnippetLength)

	// Storage defaults
	assert.Equal(t, RepositorySQLite, settings.Storage.Repository)
	assert.Equal(t, "http://localhost:8000", settings.Storage.ChromaURL)
	assert.Equal(t, "ansa", settings.Storage.ChromaCollection)

	// Reranking is off by default
	assert.Equal(t, RerankerNone, settings.Rerank.Kind)
}

// TestAllRerankerKinds tests the complete list of reranker kinds
func TestAllRerankerKinds(t *testing.T) {
	kinds := AllRerankerKinds()

	require.Len(t, kinds, 3)
	for _, kind := range kinds {
		assert.True(t, kind.IsValid(), "Kind %s should be valid", kind)
	}
}

// TestAllRepositoryKinds tests the complete list of repository kinds
func TestAllRepositoryKinds(t *testing.T) {
	kinds := AllRepositoryKinds()

	require.Len(t, kinds, 3)
	for _, kind := range kinds {
		assert.True(t, kind.IsValid(), "Kind %s should be valid", kind)
	}
}

// TestPipelineConfigFromChunking tests pipeline config derivation
func TestPipelineConfigFromChunking(t *testing.T) {
	cfg := PipelineConfigFromChunking(ChunkingSettings{
		Mode:         ChunkModeFlat,
		ChunkSize:    800,
		Overlap:      100,
		MinChunkSize: 50,
		MaxChunkSize: 1600,
	})

	require.Equal(t, []string{"chunker"}, cfg.Processors)

	chunker := cfg.GetProcessorConfig("chunker")
	require.NotNil(t, chunker)
	assert.Equal(t, "flat", chunker["mode"])
	assert.Equal(t, 800, chunker["chunk_size"])
	assert.Equal(t, 100, chunker["overlap"])
	assert.Equal(t, 50, chunker["min_chunk_size"])
	assert.Equal(t, 1600, chunker["max_chunk_size"])

	assert.Nil(t, cfg.GetProcessorConfig("missing"))
}
