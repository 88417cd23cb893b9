package driven

import "github.com/custodia-labs/ansa/internal/core/domain"

// AIConfigValidator checks provider settings by actually talking to
// the provider, so a bad key or model name surfaces at configuration
// time rather than on the first query.
type AIConfigValidator interface {
	// ValidateEmbedding pings the embedding provider and confirms the
	// model produces vectors of the configured width. An unconfigured
	// provider passes.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the LLM provider. An unconfigured provider
	// passes.
	ValidateLLM(config *domain.LLMSettings) error
}
