package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements the Provider interface for Ollama
type OllamaProvider struct {
	client *api.Client
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider() (*OllamaProvider, error) {
	// Initialize client from environment (OLLAMA_HOST)
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		client: client,
	}, nil
}

// Query sends a request to Ollama and accumulates the streamed reply
func (p *OllamaProvider) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	var messages []api.Message
	if req.SystemPrompt != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.UserPrompt})

	options := map[string]interface{}{}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		options["temperature"] = req.Temperature
	}

	chatReq := &api.ChatRequest{
		Model:    req.Model,
		Messages: messages,
		Options:  options,
	}

	var content strings.Builder
	var promptTokens, completionTokens int

	respFunc := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)

		// Capture token counts from final response
		if resp.Done {
			promptTokens = resp.PromptEvalCount
			completionTokens = resp.EvalCount
		}
		return nil
	}

	if err := p.client.Chat(ctx, chatReq, respFunc); err != nil {
		return nil, fmt.Errorf("Ollama API error: %w", err)
	}

	return &QueryResponse{
		Content:      content.String(),
		TokensInput:  promptTokens,
		TokensOutput: completionTokens,
		Model:        req.Model,
		Provider:     "ollama",
	}, nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}
