// Package huggingface implements provider.Provider for Hugging Face
// text-generation inference endpoints.
//
// The conversation is rendered with the Mistral instruction template and
// posted to the configured endpoint with streaming enabled. The response
// body is raw generated text and is forwarded to the caller unmodified.
package huggingface
