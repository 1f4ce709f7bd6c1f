package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// Environment variables used to configure the proxy connection
const (
	// EnvURL overrides the proxy base URL
	EnvURL = "PROXY_URL"
	// EnvAPIKey provides the API key sent as a bearer token
	EnvAPIKey = "PROXY_API_KEY"
)

// DefaultURL is the proxy base URL used when PROXY_URL is not set
const DefaultURL = "http://localhost:8000"

// Config holds the connection settings for the calendar proxy
type Config struct {
	// URL is the proxy base URL without the /calendar/v3 suffix
	URL string

	// APIKey authenticates requests against the proxy
	APIKey string
}

// ConfigFromEnv creates a Config from environment variables,
// falling back to DefaultURL when PROXY_URL is unset
func ConfigFromEnv() Config {
	return Config{
		URL:    getEnvOrDefault(EnvURL, DefaultURL),
		APIKey: os.Getenv(EnvAPIKey),
	}
}

// Validate checks the configuration for common errors
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("proxy URL cannot be empty")
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL %q: %w", c.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("proxy URL %q must use http or https", c.URL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("proxy API key cannot be empty (set %s)", EnvAPIKey)
	}
	return nil
}

// Endpoint returns the Calendar v3 base endpoint on the proxy.
// The trailing slash is required by the generated client so that
// relative paths resolve under the endpoint.
func (c Config) Endpoint() string {
	return strings.TrimRight(c.URL, "/") + "/calendar/v3/"
}

// HTTPClient returns an HTTP client that sends the API key as a
// bearer token on every request
func (c Config) HTTPClient(ctx context.Context) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.APIKey})
	return oauth2.NewClient(ctx, src)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
