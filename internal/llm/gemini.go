package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider.
// An empty baseURL uses the public Gemini API endpoint.
func NewGeminiProvider(ctx context.Context, apiKey, baseURL string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Query sends a non-streaming request to Gemini
func (p *GeminiProvider) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	genConfig := &genai.GenerateContentConfig{}
	if req.SystemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(float32(req.Temperature))
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.UserPrompt), genConfig)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	content := resp.Text()
	if content == "" {
		return nil, fmt.Errorf("no response from Gemini")
	}

	out := &QueryResponse{
		Content:  content,
		Model:    req.Model,
		Provider: "gemini",
	}
	if resp.UsageMetadata != nil {
		out.TokensInput = int(resp.UsageMetadata.PromptTokenCount)
		out.TokensOutput = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	return out, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}
