package providertest

import (
	"net/http/httptest"
)

// TB is the part of testing.TB that NewServer needs. Declaring it here
// keeps the testing package out of binaries that embed Backend.
type TB interface {
	Helper()
	Cleanup(func())
}

// Server is a running Backend with URL helpers for each vendor.
type Server struct {
	*httptest.Server
	Backend *Backend
}

// NewServer starts b on a loopback listener and stops it on test cleanup.
func NewServer(t TB, b *Backend) *Server {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return &Server{Server: srv, Backend: b}
}

// HuggingFaceEndpoint returns the token-generation endpoint URL.
func (s *Server) HuggingFaceEndpoint() string {
	return s.URL + HuggingFacePath
}

// TogetherBaseURL returns the chat completions base URL.
func (s *Server) TogetherBaseURL() string {
	return s.URL + TogetherPrefix
}

// ReplicateBaseURL returns the predictions base URL.
func (s *Server) ReplicateBaseURL() string {
	return s.URL + ReplicatePrefix
}
