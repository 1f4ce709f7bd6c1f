package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Environment variables for the Gemini provider.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiProvider generates text with the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed provider. Empty arguments fall
// back to the GEMINI_API_KEY and GEMINI_MODEL environment variables; the API
// key is required.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvGeminiAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set %s)", EnvGeminiAPIKey)
	}
	if model == "" {
		model = getEnvOrDefault(EnvGeminiModel, DefaultGeminiModel)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Model returns the configured Gemini model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate sends the prompt to Gemini and concatenates the text parts of the
// first candidate.
func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt, userContent string, opts GenerateOptions) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetMaxOutputTokens(int32(opts.maxTokens()))
	model.SetTemperature(float32(opts.temperature()))

	resp, err := model.GenerateContent(ctx, genai.Text(userContent))
	if err != nil {
		return "", &Error{
			Provider: "gemini",
			Op:       "generate",
			Err:      fmt.Errorf("request failed: %w", err),
		}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &Error{
			Provider: "gemini",
			Op:       "generate",
			Err:      fmt.Errorf("no content returned"),
		}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// Close releases the underlying API client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}
