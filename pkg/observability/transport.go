package observability

import (
	"net/http"
	"strconv"
	"time"
)

// Transport wraps an http.RoundTripper to record provider request metrics.
//
// It captures:
//   - llm_provider_requests_total (counter): one per round trip, labelled with the status class
//   - llm_provider_latency_seconds (histogram): time until response headers arrive
//
// Body reads are not included in the latency; for a streaming response
// that is time to first byte.
type Transport struct {
	Provider string
	Model    string
	Next     http.RoundTripper
}

// NewTransport returns a Transport for provider and model around next.
// A nil next uses http.DefaultTransport.
func NewTransport(provider, model string, next http.RoundTripper) *Transport {
	return &Transport{Provider: provider, Model: model, Next: next}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	start := time.Now()
	resp, err := next.RoundTrip(req)
	ProviderLatency.WithLabelValues(t.Provider, t.Model).Observe(time.Since(start).Seconds())

	status := "error"
	if err == nil {
		status = statusClass(resp.StatusCode)
	}
	ProviderRequestsTotal.WithLabelValues(t.Provider, t.Model, status).Inc()
	return resp, err
}

// statusClass builds a label like "2xx", "4xx", "5xx".
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// CloseIdleConnections forwards to the wrapped transport when it
// supports it, so http.Client.CloseIdleConnections keeps working.
func (t *Transport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}
	if c, ok := next.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
