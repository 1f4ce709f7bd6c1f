package llm

import (
	"context"
	"fmt"
	"os"
)

// Default generation parameters applied when GenerateOptions leaves them unset.
const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.3
)

// Provider generates text from a system prompt and user content.
//
// Implementations exist for an OpenAI-compatible local inference server
// (LocalProvider) and for the Google Gemini API (GeminiProvider). Adding a
// new backend means implementing this single method.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userContent string, opts GenerateOptions) (string, error)
}

// GenerateOptions controls a single generation request.
type GenerateOptions struct {
	// MaxTokens caps the response length. Zero selects the default (1024).
	MaxTokens int

	// Temperature is the sampling temperature (0.0-1.0). Zero selects the
	// default (0.3).
	Temperature float64
}

// maxTokens returns the effective token cap for these options.
func (o GenerateOptions) maxTokens() int {
	if o.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return o.MaxTokens
}

// temperature returns the effective sampling temperature for these options.
func (o GenerateOptions) temperature() float64 {
	if o.Temperature <= 0 {
		return defaultTemperature
	}
	return o.Temperature
}

// Error represents an error that occurred during an LLM operation
type Error struct {
	// Provider is the backend that failed (e.g., "local", "gemini")
	Provider string

	// Op is the operation that failed (e.g., "generate")
	Op string

	// Err is the underlying error
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("llm %s (provider: %s): %v", e.Op, e.Provider, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Op, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Err
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
