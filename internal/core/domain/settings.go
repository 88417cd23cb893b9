package domain

import "fmt"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// RerankerKind identifies the reranking strategy applied to retrieved
// candidates before answer generation.
type RerankerKind string

// Available reranker kinds.
const (
	// RerankerNone disables reranking; retrieval order is kept.
	RerankerNone RerankerKind = "none"

	// RerankerBM25 reorders candidates by lexical BM25 score.
	RerankerBM25 RerankerKind = "bm25"

	// RerankerLLM asks the configured LLM to score each candidate.
	RerankerLLM RerankerKind = "llm"
)

// IsValid returns true if the reranker kind is recognised.
func (k RerankerKind) IsValid() bool {
	switch k {
	case RerankerNone, RerankerBM25, RerankerLLM:
		return true
	default:
		return false
	}
}

// RequiresLLM returns true if this reranker needs an LLM provider.
func (k RerankerKind) RequiresLLM() bool {
	return k == RerankerLLM
}

// String returns the string representation.
func (k RerankerKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k RerankerKind) Description() string {
	switch k {
	case RerankerNone:
		return "None (keep retrieval order)"
	case RerankerBM25:
		return "BM25 (lexical reranking)"
	case RerankerLLM:
		return "LLM (model-scored reranking)"
	default:
		return unknownDescription
	}
}

// RepositoryKind identifies the document repository backend.
type RepositoryKind string

// Available repository kinds.
const (
	// RepositoryMemory keeps documents in process memory.
	RepositoryMemory RepositoryKind = "memory"

	// RepositorySQLite persists documents to a local SQLite database.
	RepositorySQLite RepositoryKind = "sqlite"

	// RepositoryChroma stores documents in a Chroma vector database.
	RepositoryChroma RepositoryKind = "chroma"
)

// IsValid returns true if the repository kind is recognised.
func (k RepositoryKind) IsValid() bool {
	switch k {
	case RepositoryMemory, RepositorySQLite, RepositoryChroma:
		return true
	default:
		return false
	}
}

// Persistent returns true if documents survive process restarts.
func (k RepositoryKind) Persistent() bool {
	return k == RepositorySQLite || k == RepositoryChroma
}

// String returns the string representation.
func (k RepositoryKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k RepositoryKind) Description() string {
	switch k {
	case RepositoryMemory:
		return "Memory (volatile, for testing)"
	case RepositorySQLite:
		return "SQLite (local file)"
	case RepositoryChroma:
		return "Chroma (vector database)"
	default:
		return unknownDescription
	}
}

// ChunkMode identifies the document chunking strategy.
type ChunkMode string

// Available chunking modes.
const (
	// ChunkModeFlat packs fixed-size chunks along a single separator.
	ChunkModeFlat ChunkMode = "flat"

	// ChunkModeSemantic walks a separator hierarchy from coarse to fine
	// and packs along the first level that splits the text well.
	ChunkModeSemantic ChunkMode = "semantic"
)

// IsValid returns true if the chunk mode is recognised.
func (m ChunkMode) IsValid() bool {
	return m == ChunkModeFlat || m == ChunkModeSemantic
}

// String returns the string representation.
func (m ChunkMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m ChunkMode) Description() string {
	switch m {
	case ChunkModeFlat:
		return "Flat (fixed-size with overlap)"
	case ChunkModeSemantic:
		return "Semantic (structure-aware separators)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of texts sent per embedding request.
	BatchSize int

	// RequestsPerSecond throttles embedding requests. Zero disables
	// throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// Dimensions returns the vector size for the configured model, or 0
// when the model is not a known embedding model.
func (e EmbeddingSettings) Dimensions() int {
	return EmbeddingDimensions()[e.Model]
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds document chunking configuration.
type ChunkingSettings struct {
	// Mode selects the chunking strategy.
	Mode ChunkMode

	// ChunkSize is the target chunk size in characters (flat mode).
	ChunkSize int

	// Overlap is the number of trailing characters carried into the
	// next chunk (flat mode).
	Overlap int

	// MinChunkSize is the smallest acceptable chunk (semantic mode).
	MinChunkSize int

	// MaxChunkSize is the largest acceptable chunk (semantic mode).
	MaxChunkSize int
}

// Validate checks the chunking parameters for consistency.
func (c ChunkingSettings) Validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("chunk mode %q: %w", c.Mode, ErrInvalidInput)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive: %w", ErrInvalidInput)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("overlap must be in [0, chunk size): %w", ErrInvalidInput)
	}
	if c.MinChunkSize <= 0 || c.MaxChunkSize < c.MinChunkSize {
		return fmt.Errorf("chunk size bounds are inconsistent: %w", ErrInvalidInput)
	}
	return nil
}

// QuerySettings holds query pipeline configuration.
type QuerySettings struct {
	// TopK is the number of documents to ground each answer on.
	TopK int

	// ScoreThreshold is the minimum retrieval similarity for a
	// document to be considered.
	ScoreThreshold float64

	// MinRerankScore is the minimum reranker score for a candidate
	// to survive reranking.
	MinRerankScore float64

	// ContextMessages is the number of recent conversation messages
	// included when answering within a conversation.
	ContextMessages int

	// SnippetLength is the maximum length of source snippets.
	SnippetLength int
}

// Validate checks the query parameters for consistency.
func (q QuerySettings) Validate() error {
	if q.TopK <= 0 {
		return fmt.Errorf("top-k must be positive: %w", ErrInvalidInput)
	}
	if q.ScoreThreshold < -1 || q.ScoreThreshold > 1 {
		return fmt.Errorf("score threshold must be in [-1, 1]: %w", ErrInvalidInput)
	}
	if q.SnippetLength <= 0 {
		return fmt.Errorf("snippet length must be positive: %w", ErrInvalidInput)
	}
	return nil
}

// StorageSettings holds repository and cache configuration.
type StorageSettings struct {
	// Repository selects the document repository backend.
	Repository RepositoryKind

	// SQLitePath is the database file path. Empty means the default
	// location under the user's data directory.
	SQLitePath string

	// CacheDir is the root of the local document cache. Empty means
	// the default location under the user's data directory.
	CacheDir string

	// ChromaURL is the Chroma server endpoint.
	ChromaURL string

	// ChromaCollection is the Chroma collection name.
	ChromaCollection string
}

// RerankSettings holds reranking configuration.
type RerankSettings struct {
	// Kind selects the reranking strategy.
	Kind RerankerKind
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Chunking holds document chunking settings.
	Chunking ChunkingSettings

	// Query holds query pipeline settings.
	Query QuerySettings

	// Storage holds repository and cache settings.
	Storage StorageSettings

	// Rerank holds reranking settings.
	Rerank RerankSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers (Embedding, LLM) are left unconfigured by default.
// Users must explicitly configure them via `ansa config`.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		// Embedding provider is left unconfigured - user must set it up
		Embedding: EmbeddingSettings{
			BatchSize: 16,
		},
		// LLM provider is left unconfigured - user must set it up
		LLM: LLMSettings{},
		Chunking: ChunkingSettings{
			Mode:         ChunkModeSemantic,
			ChunkSize:    1000,
			Overlap:      200,
			MinChunkSize: 100,
			MaxChunkSize: 2000,
		},
		Query: QuerySettings{
			TopK:            5,
			ScoreThreshold:  0.7,
			MinRerankScore:  0.3,
			ContextMessages: 10,
			SnippetLength:   200,
		},
		Storage: StorageSettings{
			Repository:       RepositorySQLite,
			ChromaURL:        "http://localhost:8000",
			ChromaCollection: "ansa",
		},
		Rerank: RerankSettings{
			Kind: RerankerNone,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllRerankerKinds returns all available reranker kinds.
func AllRerankerKinds() []RerankerKind {
	return []RerankerKind{
		RerankerNone,
		RerankerBM25,
		RerankerLLM,
	}
}

// AllRepositoryKinds returns all available repository kinds.
func AllRepositoryKinds() []RepositoryKind {
	return []RepositoryKind{
		RepositoryMemory,
		RepositorySQLite,
		RepositoryChroma,
	}
}

// AllChunkModes returns all available chunking modes.
func AllChunkModes() []ChunkMode {
	return []ChunkMode{
		ChunkModeFlat,
		ChunkModeSemantic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be
// added without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFromChunking builds the default pipeline for the given
// chunking settings.
func PipelineConfigFromChunking(c ChunkingSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"mode":           c.Mode.String(),
				"chunk_size":     c.ChunkSize,
				"overlap":        c.Overlap,
				"min_chunk_size": c.MinChunkSize,
				"max_chunk_size": c.MaxChunkSize,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
// Works out-of-the-box with the chunker using sensible defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFromChunking(DefaultAppSettings().Chunking)
}
