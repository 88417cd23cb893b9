package driven

import "context"

// LLMService generates text completions. It is optional: with no LLM
// configured, queries still retrieve documents but produce no written
// answer, and the LLM reranker is unavailable.
type LLMService interface {
	// Generate completes the user message under the given system
	// prompt.
	Generate(ctx context.Context, system, user string, opts GenerateOptions) (string, error)

	// ModelName identifies the underlying model, for logs and answer
	// metadata.
	ModelName() string

	// Ping makes a minimal round trip to verify the provider is
	// reachable with the current credentials.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions bounds a single generation call.
type GenerateOptions struct {
	// MaxTokens caps the completion length. Zero keeps the provider
	// default.
	MaxTokens int

	// Temperature sets sampling randomness, 0 meaning deterministic.
	Temperature float64
}
