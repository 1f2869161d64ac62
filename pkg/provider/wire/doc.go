// Package wire turns raw vendor response bodies into text fragments.
//
// Two framings are supported:
//
//   - raw pass-through, where the body bytes are the text;
//   - Server-Sent-Events style "data:" lines carrying JSON payloads.
//
// Decoders pull from an io.Reader only when asked for the next fragment
// and never assume that a frame boundary lines up with a read boundary.
package wire
