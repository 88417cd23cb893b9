package services

import (
	"fmt"
	"os"
	"slices"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
	"github.com/custodia-labs/ansa/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedBatchSize = "embedding.batch_size"
	keyEmbedRPS       = "embedding.requests_per_second"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyChunkMode    = "chunking.mode"
	keyChunkSize    = "chunking.chunk_size"
	keyChunkOverlap = "chunking.overlap"
	keyChunkMin     = "chunking.min_chunk_size"
	keyChunkMax     = "chunking.max_chunk_size"

	keyQueryTopK      = "query.top_k"
	keyQueryThreshold = "query.score_threshold"
	keyQueryMinRerank = "query.min_rerank_score"
	keyQueryContext   = "query.context_messages"
	keyQuerySnippet   = "query.snippet_length"

	keyStorageRepo     = "storage.repository"
	keyStorageSQLite   = "storage.sqlite_path"
	keyStorageCacheDir = "storage.cache_dir"
	keyChromaURL       = "storage.chroma_url"
	keyChromaColl      = "storage.chroma_collection"

	keyRerankKind = "rerank.kind"
)

// localBaseURL is where Ollama listens unless configured otherwise.
const localBaseURL = "http://localhost:11434"

// SettingsService reads and writes application settings through the
// config store, layering defaults under whatever the user has set.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get assembles the current settings. Unset keys fall back to the
// defaults, invalid enum values fall back too rather than erroring.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          readKind(s.configStore, keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // empty means the provider default endpoint
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
		},
		LLM: domain.LLMSettings{
			Provider: readKind(s.configStore, keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunking: domain.ChunkingSettings{
			Mode:         readKind(s.configStore, keyChunkMode, defaults.Chunking.Mode),
			ChunkSize:    s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:      s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
			MinChunkSize: s.getInt(keyChunkMin, defaults.Chunking.MinChunkSize),
			MaxChunkSize: s.getInt(keyChunkMax, defaults.Chunking.MaxChunkSize),
		},
		Query: domain.QuerySettings{
			TopK:            s.getInt(keyQueryTopK, defaults.Query.TopK),
			ScoreThreshold:  s.getFloat(keyQueryThreshold, defaults.Query.ScoreThreshold),
			MinRerankScore:  s.getFloat(keyQueryMinRerank, defaults.Query.MinRerankScore),
			ContextMessages: s.getInt(keyQueryContext, defaults.Query.ContextMessages),
			SnippetLength:   s.getInt(keyQuerySnippet, defaults.Query.SnippetLength),
		},
		Storage: domain.StorageSettings{
			Repository:       readKind(s.configStore, keyStorageRepo, defaults.Storage.Repository),
			SQLitePath:       s.configStore.GetString(keyStorageSQLite),
			CacheDir:         s.configStore.GetString(keyStorageCacheDir),
			ChromaURL:        s.getString(keyChromaURL, defaults.Storage.ChromaURL),
			ChromaCollection: s.getString(keyChromaColl, defaults.Storage.ChromaCollection),
		},
		Rerank: domain.RerankSettings{
			Kind: readKind(s.configStore, keyRerankKind, defaults.Rerank.Kind),
		},
	}

	// Environment keys take precedence so API keys never have to live
	// in the config file.
	if key := apiKeyFromEnv(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := apiKeyFromEnv(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}

	return settings, nil
}

// configEntry pairs a store key with the label used in save errors.
type configEntry struct {
	key   string
	label string
	value any
}

// Save writes every setting back to the store. API keys are only
// written when set, so an env-provided key never lands on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	entries := []configEntry{
		{keyEmbedProvider, "embedding provider", settings.Embedding.Provider.String()},
		{keyEmbedModel, "embedding model", settings.Embedding.Model},
		{keyEmbedBaseURL, "embedding base_url", settings.Embedding.BaseURL},
		{keyEmbedBatchSize, "embedding batch_size", settings.Embedding.BatchSize},
		{keyEmbedRPS, "embedding requests_per_second", settings.Embedding.RequestsPerSecond},
		{keyLLMProvider, "llm provider", settings.LLM.Provider.String()},
		{keyLLMModel, "llm model", settings.LLM.Model},
		{keyLLMBaseURL, "llm base_url", settings.LLM.BaseURL},
		{keyChunkMode, "chunking mode", settings.Chunking.Mode.String()},
		{keyChunkSize, "chunk_size", settings.Chunking.ChunkSize},
		{keyChunkOverlap, "overlap", settings.Chunking.Overlap},
		{keyChunkMin, "min_chunk_size", settings.Chunking.MinChunkSize},
		{keyChunkMax, "max_chunk_size", settings.Chunking.MaxChunkSize},
		{keyQueryTopK, "top_k", settings.Query.TopK},
		{keyQueryThreshold, "score_threshold", settings.Query.ScoreThreshold},
		{keyQueryMinRerank, "min_rerank_score", settings.Query.MinRerankScore},
		{keyQueryContext, "context_messages", settings.Query.ContextMessages},
		{keyQuerySnippet, "snippet_length", settings.Query.SnippetLength},
		{keyStorageRepo, "repository", settings.Storage.Repository.String()},
		{keyStorageSQLite, "sqlite_path", settings.Storage.SQLitePath},
		{keyStorageCacheDir, "cache_dir", settings.Storage.CacheDir},
		{keyChromaURL, "chroma_url", settings.Storage.ChromaURL},
		{keyChromaColl, "chroma_collection", settings.Storage.ChromaCollection},
		{keyRerankKind, "rerank kind", settings.Rerank.Kind.String()},
	}
	if settings.Embedding.APIKey != "" {
		entries = append(entries, configEntry{keyEmbedAPIKey, "embedding api_key", settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		entries = append(entries, configEntry{keyLLMAPIKey, "llm api_key", settings.LLM.APIKey})
	}

	for _, e := range entries {
		if err := s.configStore.Set(e.key, e.value); err != nil {
			return fmt.Errorf("save %s: %w", e.label, err)
		}
	}
	return nil
}

// SetEmbeddingProvider switches the embedding provider, filling in the
// provider's default model and endpoint where none is given.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if err := requireAPIKey(provider, apiKey); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = pickModel(model, settings.Embedding.Model, provider, domain.DefaultEmbeddingModels())
	settings.Embedding.BaseURL = pickBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider switches the LLM provider, filling in the provider's
// default model and endpoint where none is given.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if err := requireAPIKey(provider, apiKey); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = pickModel(model, settings.LLM.Model, provider, domain.DefaultLLMModels())
	settings.LLM.BaseURL = pickBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetRerankerKind updates the reranking strategy.
func (s *SettingsService) SetRerankerKind(kind domain.RerankerKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid reranker: %s", kind)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if kind.RequiresLLM() && !settings.LLM.IsConfigured() {
		return fmt.Errorf("reranker %s requires an LLM provider to be configured", kind)
	}

	settings.Rerank.Kind = kind
	return s.Save(settings)
}

// SetRepositoryKind updates the document repository backend.
func (s *SettingsService) SetRepositoryKind(kind domain.RepositoryKind) error {
	if !kind.IsValid() {
		return fmt.Errorf("invalid repository: %s", kind)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Storage.Repository = kind
	return s.Save(settings)
}

// Validate checks that the current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Chunking.Validate(); err != nil {
		return fmt.Errorf("chunking settings: %w", err)
	}
	if err := settings.Query.Validate(); err != nil {
		return fmt.Errorf("query settings: %w", err)
	}
	if !settings.Storage.Repository.IsValid() {
		return fmt.Errorf("invalid repository: %s", settings.Storage.Repository)
	}
	if !settings.Rerank.Kind.IsValid() {
		return fmt.Errorf("invalid reranker: %s", settings.Rerank.Kind)
	}
	if settings.Rerank.Kind.RequiresLLM() && !settings.LLM.IsConfigured() {
		return fmt.Errorf(
			"reranker %q requires an LLM provider to be configured",
			settings.Rerank.Kind.Description(),
		)
	}

	return nil
}

// GetDefaults returns the built-in defaults.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig probes the configured embedding provider.
// A service built without a validator accepts any configuration.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig probes the configured LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// GetPipelineConfig derives the post-processor pipeline configuration
// from the chunking settings.
func (s *SettingsService) GetPipelineConfig() (domain.PipelineConfig, error) {
	settings, err := s.Get()
	if err != nil {
		return domain.PipelineConfig{}, err
	}
	return domain.PipelineConfigFromChunking(settings.Chunking), nil
}

// requireAPIKey rejects providers that need a key when neither the
// argument nor the environment supplies one.
func requireAPIKey(provider domain.AIProvider, apiKey string) error {
	if provider.RequiresAPIKey() && apiKey == "" && apiKeyFromEnv(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}
	return nil
}

// pickModel resolves which model to store: the requested one, the
// provider default, or whatever was configured before.
func pickModel(requested, current string, provider domain.AIProvider, defaults map[domain.AIProvider]string) string {
	if requested != "" {
		return requested
	}
	if def, ok := defaults[provider]; ok {
		return def
	}
	return current
}

// pickBaseURL keeps a local provider pointed at its endpoint and clears
// the URL for cloud providers, which use their fixed API hosts.
func pickBaseURL(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return localBaseURL
	}
	return current
}

// readKind reads a string-backed enum, falling back to defaultVal when
// the key is absent or holds a value the type rejects.
func readKind[K interface {
	~string
	IsValid() bool
}](store driven.ConfigStore, key string, defaultVal K) K {
	raw := store.GetString(key)
	if raw == "" {
		return defaultVal
	}
	if kind := K(raw); kind.IsValid() {
		return kind
	}
	return defaultVal
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val != 0 {
		return val
	}
	return defaultVal
}

// getIntAllowZero distinguishes an explicit zero from an absent key,
// for settings where zero is meaningful (e.g. chunk overlap).
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// apiKeyFromEnv returns the conventional environment variable for the
// provider, so keys never have to live in the config file.
func apiKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
