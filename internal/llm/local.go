package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// Environment variables for the local provider.
const (
	EnvLocalURL    = "LLM_URL"
	EnvLocalModel  = "LLM_MODEL"
	EnvLocalAPIKey = "LLM_API_KEY"
)

// Defaults target a local inference server running a Qwen3 model.
const (
	DefaultLocalURL   = "http://localhost:8080/v1/chat/completions"
	DefaultLocalModel = "qwen/qwen3-14b"

	localRequestTimeout = 120 * time.Second
)

// thinkingPattern matches the reasoning blocks some models emit before their
// answer. They are stripped from responses.
var thinkingPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// LocalProvider talks to an OpenAI-compatible chat completions endpoint,
// typically a local inference server. An API key is optional; when set it is
// sent as a bearer token, which also makes hosted OpenAI-compatible services
// usable.
type LocalProvider struct {
	url    string
	model  string
	apiKey string
	client *http.Client
}

// NewLocalProvider creates a provider for an OpenAI-compatible endpoint.
// Empty arguments fall back to the LLM_URL, LLM_MODEL and LLM_API_KEY
// environment variables, then to the local-server defaults.
func NewLocalProvider(url, model, apiKey string) *LocalProvider {
	if url == "" {
		url = getEnvOrDefault(EnvLocalURL, DefaultLocalURL)
	}
	if model == "" {
		model = getEnvOrDefault(EnvLocalModel, DefaultLocalModel)
	}
	if apiKey == "" {
		apiKey = os.Getenv(EnvLocalAPIKey)
	}

	return &LocalProvider{
		url:    url,
		model:  model,
		apiKey: apiKey,
		client: &http.Client{Timeout: localRequestTimeout},
	}
}

// URL returns the chat completions endpoint this provider posts to.
func (p *LocalProvider) URL() string {
	return p.url
}

// Model returns the model name sent with each request.
func (p *LocalProvider) Model() string {
	return p.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends a chat completion request and returns the response text
// with any reasoning blocks stripped.
func (p *LocalProvider) Generate(ctx context.Context, systemPrompt, userContent string, opts GenerateOptions) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   opts.maxTokens(),
		Temperature: opts.temperature(),
	})
	if err != nil {
		return "", &Error{
			Provider: "local",
			Op:       "generate",
			Err:      fmt.Errorf("failed to encode request: %w", err),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return "", &Error{
			Provider: "local",
			Op:       "generate",
			Err:      fmt.Errorf("failed to build request: %w", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &Error{
			Provider: "local",
			Op:       "generate",
			Err:      fmt.Errorf("request failed: %w", err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{
			Provider: "local",
			Op:       "generate",
			Err:      fmt.Errorf("request failed with status %d", resp.StatusCode),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &Error{
			Provider: "local",
			Op:       "generate",
			Err:      fmt.Errorf("invalid response format: %w", err),
		}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{
			Provider: "local",
			Op:       "generate",
			Err:      fmt.Errorf("invalid response format: no choices returned"),
		}
	}

	return stripThinking(parsed.Choices[0].Message.Content), nil
}

// stripThinking removes reasoning blocks and surrounding whitespace from a
// model response.
func stripThinking(text string) string {
	return strings.TrimSpace(thinkingPattern.ReplaceAllString(text, ""))
}
