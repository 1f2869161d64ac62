package huggingface

import (
	"net/http"
	"time"
)

// Config holds configuration for the Hugging Face adapter.
type Config struct {
	// Endpoint is the full inference URL. Required at request time.
	Endpoint string

	// APIKey is sent as a bearer token. Required at request time.
	APIKey string

	// Model is reported by ModelInfo. The endpoint already determines
	// which model serves the request.
	Model string

	// Timeout for non-streaming HTTP work. Defaults to 120s.
	Timeout time.Duration

	// Transport overrides the HTTP transport (optional).
	Transport http.RoundTripper
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig(endpoint, apiKey string) Config {
	return Config{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Model:    "mistralai/Mistral-7B-Instruct-v0.3",
		Timeout:  120 * time.Second,
	}
}
