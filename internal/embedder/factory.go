package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration
type Config struct {
	Provider string
	APIKey   string
}

// NewFromEnv creates an embedder based on environment variables
// Priority:
// 1. RETRIEVAL_EMBEDDING_PROVIDER (jina, openai, local)
// 2. Check for API keys: JINA_API_KEY, OPENAI_API_KEY
// 3. Default to local if no API keys found
func NewFromEnv() (Embedder, error) {
	if os.Getenv("EMBEDDINGS_DISABLED") == "true" {
		return NoOp(), nil
	}

	provider := os.Getenv("RETRIEVAL_EMBEDDING_PROVIDER")
	jinaKey := os.Getenv(EnvJinaAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	// Explicit provider selection
	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderJina:
			return NewJinaProvider(jinaKey)
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey)
		case ProviderLocal:
			return NewLocalProvider(), nil
		default:
			return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, provider)
		}
	}

	// Auto-detect based on available API keys
	if jinaKey != "" {
		return NewJinaProvider(jinaKey)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey)
	}

	// Fallback to local provider
	return NewLocalProvider(), nil
}

// New creates an embedder with explicit configuration
func New(cfg Config) (Embedder, error) {
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case ProviderJina:
		return NewJinaProvider(cfg.APIKey)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey)
	case ProviderLocal:
		return NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedModel, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	provider := os.Getenv("RETRIEVAL_EMBEDDING_PROVIDER")
	if provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ProviderLocal
}
