package cli

import (
	"context"
	"fmt"

	"github.com/alecf/manimator/internal/config"
	"github.com/alecf/manimator/internal/llm"
)

// CreateProvider initializes the model provider named in the configuration
func CreateProvider(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	m := cfg.Model

	switch m.Provider {
	case "gemini":
		apiKey := cfg.GetAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("Gemini API key not found. Set GEMINI_API_KEY environment variable")
		}
		provider, err := llm.NewGeminiProvider(ctx, apiKey, m.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return provider, nil

	case "openai":
		apiKey := cfg.GetAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable")
		}
		provider, err := llm.NewOpenAIProvider(apiKey, m.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI provider: %w", err)
		}
		return provider, nil

	case "anthropic":
		apiKey := cfg.GetAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("Anthropic API key not found. Set ANTHROPIC_API_KEY environment variable")
		}
		provider, err := llm.NewAnthropicProvider(apiKey, m.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
		}
		return provider, nil

	case "ollama":
		provider, err := llm.NewOllamaProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama provider: %w", err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", m.Provider)
	}
}
