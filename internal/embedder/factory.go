package embedder

import (
	"fmt"
	"os"
	"time"

	"github.com/semdex/semdex/internal/config"
	"github.com/semdex/semdex/internal/embcache"
	"github.com/semdex/semdex/pkg/types"
)

// NewFromConfig builds a cache-backed embedding Service from configuration.
func NewFromConfig(cfg config.EmbedderConfig, cache *embcache.Cache) (*Service, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(provider, cache), nil
}

func newProvider(cfg config.EmbedderConfig) (Provider, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	switch cfg.Provider {
	case ProviderOpenAI:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOpenAIBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return NewHTTPProvider(ProviderOpenAI, baseURL, apiKey(cfg), model, cfg.Dimension, timeout)

	case ProviderJina:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultJinaBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = DefaultJinaModel
		}
		return NewHTTPProvider(ProviderJina, baseURL, apiKey(cfg), model, cfg.Dimension, timeout)

	case ProviderLocal, "":
		return NewLocalProvider(cfg.Dimension), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", types.ErrConfiguration, cfg.Provider)
	}
}

func apiKey(cfg config.EmbedderConfig) string {
	if cfg.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(cfg.APIKeyEnv)
}
