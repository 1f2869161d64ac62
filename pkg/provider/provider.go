package provider

import (
	"context"
)

// Provider abstracts a streaming inference vendor. Each implementation
// formats the conversation for its vendor, opens the streaming HTTP
// response and decodes it into plain text fragments.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// Every GenerateStream call opens its own connection(s); no mutable state
// is shared between calls.
type Provider interface {
	// Name returns the provider identifier (e.g., "huggingface", "together").
	Name() string

	// GenerateStream validates credentials, builds the vendor payload and
	// opens the streaming response. Configuration errors are returned before
	// any network activity. The caller must drain or Close the returned
	// Stream to release the underlying connection.
	GenerateStream(ctx context.Context, systemPrompt string, messages []ChatMessage, opts GenerationOptions) (*Stream, error)

	// ModelInfo returns static, configuration-derived model details.
	// It never touches the network.
	ModelInfo() ModelInfo

	// Close releases provider resources (idle HTTP connections).
	Close() error
}
