// Package provider defines the vendor-agnostic contract for streaming text
// generation. Each adapter (huggingface, together, replicate) owns its own
// prompt formatting, request construction and wire decoding, and exposes
// the result as a Stream of text fragments so callers never see vendor
// framing.
package provider
