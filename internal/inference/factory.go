package inference

import (
	"fmt"
	"strings"
	"time"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/service"
)

// ProviderConfig holds configuration shared by the provider clients.
type ProviderConfig struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// NewProvider creates a structured-inference provider client.
func NewProvider(cfg ProviderConfig) (service.InferenceProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported inference provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}

// NewEmbedder creates an embedding provider client.
func NewEmbedder(cfg ProviderConfig) (service.EmbeddingProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}
