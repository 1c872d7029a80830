package llm

import (
	"fmt"

	"github.com/crosscheck-ai/dissent/internal/domain"
)

// Provider constants
const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// NewClient creates a generative client for the configured provider.
// Returns an error if the provider is unknown or the API key is empty
// (except for mock).
func NewClient(cfg Config) (domain.GenerativeClient, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIClient(cfg), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: openai, mock)", cfg.Provider)
	}
}
