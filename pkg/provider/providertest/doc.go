// Package providertest emulates the vendor streaming contracts over
// HTTP for tests and local development.
//
// One Backend serves all three vendors on a single handler:
//
//	POST /huggingface/generate            raw text stream
//	POST /together/v1/chat/completions    chat completion SSE
//	POST /replicate/v1/predictions        prediction create
//	GET  /replicate/v1/streams/{id}       prediction output SSE
//
// Fault injection (error statuses, malformed frames, missing stream URL,
// stalled streams) is configured through Backend fields.
package providertest
