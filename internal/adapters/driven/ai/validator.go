package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ansa/internal/core/domain"
	"github.com/custodia-labs/ansa/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// probeTimeout bounds the dimension probe. The first inference can
// load the model, which takes longer than a ping.
const probeTimeout = 15 * time.Second

// ConfigValidator checks provider settings by standing up a throwaway
// service and exercising it. Meant for configuration changes, where a
// bad key or wrong dimension setting should surface immediately rather
// than on the first real query.
type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding pings the provider and probes the model's vector
// size, so a mismatched dimension setting is caught before any
// document is embedded with it. Unconfigured settings pass.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	if err := pingWithTimeout(svc); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	return probeDimensions(ctx, svc)
}

// ValidateLLM pings the provider to check reachability and
// credentials. Unconfigured settings pass.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	svc, err := CreateLLMService(config)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return pingWithTimeout(svc)
}

// probeDimensions embeds a short text and compares the returned vector
// size against the service's configured dimensions.
func probeDimensions(ctx context.Context, svc driven.EmbeddingService) error {
	vec, err := svc.EmbedQuery(ctx, "dimension probe")
	if err != nil {
		return fmt.Errorf("probe embedding model: %w", err)
	}
	if len(vec) != svc.Dimensions() {
		return fmt.Errorf("%w: model %s returns %d dimensions, configured %d",
			domain.ErrDimensionMismatch, svc.ModelName(), len(vec), svc.Dimensions())
	}
	return nil
}
