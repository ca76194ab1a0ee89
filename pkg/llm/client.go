package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AagmanBhatia/Oora/pkg/config"
	"github.com/AagmanBhatia/Oora/pkg/models"
)

// Client is the interface for interacting with a hosted completion provider
type Client interface {
	// Chat sends the whole conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []models.Message) (models.Message, error)
	// Model returns the provider model identifier used for every call.
	Model() string
	Close() error
}

// NewClient creates the client selected by cfg. The configuration is
// expected to have been validated already.
func NewClient(cfg config.ProviderConfig) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var client Client
	switch cfg.Name {
	case config.ProviderGroq:
		client = NewGroqClient(cfg.APIKey, cfg.Model, cfg.BaseURL, httpClient)
	case config.ProviderOllama:
		c, err := NewOllamaClient(cfg.Model, cfg.BaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		client = c
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}

	if cfg.RateLimit > 0 {
		client = WithRateLimit(client, cfg.RateLimit, cfg.Burst)
	}
	return client, nil
}
