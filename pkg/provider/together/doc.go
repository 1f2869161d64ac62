// Package together implements provider.Provider for Together AI's
// OpenAI-compatible chat completions endpoint.
package together
