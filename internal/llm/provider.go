package llm

import "context"

// Provider is the common interface for all LLM providers
type Provider interface {
	// Query sends a prompt and returns the complete response
	Query(ctx context.Context, req QueryRequest) (*QueryResponse, error)

	// Name returns the provider name (gemini, openai, anthropic, ollama)
	Name() string
}

// QueryRequest represents a request to an LLM
type QueryRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64 // 0 leaves the provider default
}

// QueryResponse represents a response from an LLM
type QueryResponse struct {
	Content      string
	TokensInput  int
	TokensOutput int
	Model        string
	Provider     string
}
