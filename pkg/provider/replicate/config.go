package replicate

import (
	"net/http"
	"time"
)

// Config holds configuration for the Replicate adapter.
type Config struct {
	// BaseURL is the API root (e.g., "https://api.replicate.com/v1").
	BaseURL string

	// APIKey is sent with the "Token" scheme. Required at request time.
	APIKey string

	// Model is sent as the prediction version.
	Model string

	// Timeout bounds the prediction create call. The event stream is
	// bounded by the caller's context only. Defaults to 120s.
	Timeout time.Duration

	// Transport overrides the HTTP transport (optional).
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL: "https://api.replicate.com/v1",
		APIKey:  apiKey,
		Model:   "mistralai/mistral-7b-instruct-v0.3",
		Timeout: 120 * time.Second,
	}
}
