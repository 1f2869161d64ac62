// Package replicate implements provider.Provider for Replicate
// predictions.
//
// Streaming takes two round trips: a prediction is created with
// stream=true, and the returned urls.stream endpoint is then opened as a
// Server-Sent Events stream whose data frames carry an "output" field.
package replicate
