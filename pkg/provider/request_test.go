package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONRequest(t *testing.T) {
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.com/v1", map[string]any{"stream": true})
	require.NoError(t, err)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stream":true}`, string(body))
}

func TestNewJSONRequest_BadURL(t *testing.T) {
	_, err := NewJSONRequest(context.Background(), http.MethodPost, "://missing-scheme", struct{}{})
	assert.Error(t, err)
}

func TestStreamingClient(t *testing.T) {
	base := NewClient(HuggingFace, "m", 5*time.Second, nil)
	sc := StreamingClient(base)
	assert.Zero(t, sc.Timeout)
	assert.Same(t, base.Transport, sc.Transport)
	assert.Equal(t, 5*time.Second, base.Timeout)
}

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("streamed"))
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		case "/zero-length":
			w.Header().Set("Content-Length", "0")
			w.WriteHeader(http.StatusOK)
		case "/fail":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":{"message":"upstream down"}}`))
		}
	}))
	defer srv.Close()

	client := NewClient(Together, "m", 5*time.Second, nil)
	defer client.CloseIdleConnections()

	send := func(path string) (*http.Response, error) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		return Send(client, req, "together")
	}

	t.Run("success", func(t *testing.T) {
		resp, err := send("/ok")
		require.NoError(t, err)
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "streamed", string(data))
	})

	// client has a Timeout, so the body is wrapped rather than http.NoBody.
	t.Run("empty body", func(t *testing.T) {
		_, err := send("/empty")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTransport)
		assert.Contains(t, err.Error(), "response body is empty")
	})

	t.Run("zero length body", func(t *testing.T) {
		_, err := send("/zero-length")
		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusOK, perr.StatusCode)
		assert.Contains(t, err.Error(), "response body is empty")
	})

	t.Run("empty body without timeout", func(t *testing.T) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, srv.URL+"/empty", nil)
		require.NoError(t, err)
		_, err = Send(StreamingClient(client), req, "together")
		assert.ErrorIs(t, err, ErrTransport)
	})

	t.Run("error status", func(t *testing.T) {
		_, err := send("/fail")
		var perr *Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusBadGateway, perr.StatusCode)
		assert.Equal(t, "Bad Gateway", perr.Reason)
		assert.Equal(t, "upstream down", perr.Message)
	})
}

func TestSend_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, addr, nil)
	require.NoError(t, err)

	_, err = Send(NewClient(Replicate, "m", time.Second, nil), req, "replicate")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestSend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1/", nil)
	require.NoError(t, err)

	_, err = Send(NewClient(Replicate, "m", time.Second, nil), req, "replicate")
	assert.ErrorIs(t, err, context.Canceled)
}
