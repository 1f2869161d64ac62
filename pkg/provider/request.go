package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/greemwahr/GeorgianGPT/pkg/debug"
	"github.com/greemwahr/GeorgianGPT/pkg/observability"
)

// NewClient returns an HTTP client for one adapter. Requests are
// recorded in the provider metrics. A nil base gets a private clone of
// http.DefaultTransport so Close on one adapter does not disturb others.
func NewClient(name ProviderName, model string, timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: observability.NewTransport(string(name), model, base),
	}
}

// CountSkippedFrames returns a skip hook that counts frames dropped by an
// event decoder.
func CountSkippedFrames(name ProviderName) func(payload string, err error) {
	return func(string, error) {
		observability.FramesSkippedTotal.WithLabelValues(string(name)).Inc()
	}
}

// NewJSONRequest marshals body and builds a request bound to ctx with a
// JSON content type.
func NewJSONRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if debug.TraceIsEnabled("providers") {
		debug.Raw("providers", fmt.Sprintf("%s %s\n%s", method, url, data))
	}
	return req, nil
}

// StreamingClient returns a client sharing c's transport but without its
// overall timeout. A stream can legitimately outlive any fixed timeout;
// its lifetime is controlled by the request context instead.
func StreamingClient(c *http.Client) *http.Client {
	return &http.Client{
		Transport:     c.Transport,
		CheckRedirect: c.CheckRedirect,
		Jar:           c.Jar,
	}
}

// Send performs req and returns the response only when the status is 2xx
// and a body is present. On any failure the body is closed and a
// transport Error is returned.
func Send(client *http.Client, req *http.Request, providerName string) (*http.Response, error) {
	debug.Log("providers", "sending request",
		"provider", providerName,
		"method", req.Method,
		"url", req.URL.Redacted(),
	)

	resp, err := client.Do(req)
	if err != nil {
		return nil, MapNetworkError(providerName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		debug.Log("providers", "backend returned error status",
			"provider", providerName,
			"status", resp.StatusCode,
		)
		return nil, MapHTTPError(providerName, resp)
	}

	if bodyAbsent(resp) {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, NewTransportError(providerName, resp.StatusCode, ReasonPhrase(resp), "response body is empty")
	}

	return resp, nil
}

// bodyAbsent reports whether resp carries no body. It reads the response
// metadata since a client with a Timeout wraps http.NoBody.
func bodyAbsent(resp *http.Response) bool {
	if resp.Body == nil || resp.Body == http.NoBody {
		return true
	}
	if resp.StatusCode == http.StatusNoContent {
		return true
	}
	return resp.ContentLength == 0 && len(resp.TransferEncoding) == 0
}
