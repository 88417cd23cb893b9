package driving

import "github.com/custodia-labs/ansa/internal/core/domain"

// SettingsService reads and writes application settings.
type SettingsService interface {
	// Get assembles the current settings, defaults filling the gaps.
	Get() (*domain.AppSettings, error)

	// Save writes settings back to the config store.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider switches the embedding provider, filling in
	// provider defaults for model and endpoint where none is given.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider switches the LLM provider, filling in provider
	// defaults for model and endpoint where none is given.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetRerankerKind updates the reranking strategy.
	SetRerankerKind(kind domain.RerankerKind) error

	// SetRepositoryKind updates the document repository backend.
	SetRepositoryKind(kind domain.RepositoryKind) error

	// Validate checks the current settings for internal consistency.
	Validate() error

	// GetDefaults returns the built-in defaults.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig probes the configured embedding provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig probes the configured LLM provider.
	ValidateLLMConfig() error
}
