package together

import (
	"net/http"
	"time"
)

// Config holds configuration for the Together adapter.
type Config struct {
	// BaseURL is the API root (e.g., "https://api.together.xyz/v1").
	BaseURL string

	// APIKey is sent as a bearer token. Required at request time.
	APIKey string

	// Model is the chat model identifier.
	Model string

	// Timeout for non-streaming HTTP work. Defaults to 120s.
	Timeout time.Duration

	// Transport overrides the HTTP transport (optional).
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL: "https://api.together.xyz/v1",
		APIKey:  apiKey,
		Model:   "mistralai/Mistral-7B-Instruct-v0.3",
		Timeout: 120 * time.Second,
	}
}
