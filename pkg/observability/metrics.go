// Package observability provides Prometheus metrics for provider
// requests and the text streams they produce.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// ProviderRequestsTotal counts HTTP requests sent to vendor APIs by
	// status class ("2xx", "4xx", "5xx") or "error" for network failures.
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_provider_requests_total",
			Help: "Provider requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ProviderLatency records time until response headers arrive.
	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_provider_latency_seconds",
			Help:    "Provider latency to first response byte",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// StreamsActive tracks streams that have been opened and not yet closed.
	StreamsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "llm_streams_active",
			Help: "Open text streams",
		},
		[]string{"provider"},
	)

	// StreamFragmentsTotal counts text fragments delivered to consumers.
	StreamFragmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_stream_fragments_total",
			Help: "Stream fragments delivered",
		},
		[]string{"provider", "model"},
	)

	// FramesSkippedTotal counts event frames dropped because their
	// payload could not be decoded.
	FramesSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_stream_frames_skipped_total",
			Help: "Malformed stream frames skipped",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(
		ProviderRequestsTotal,
		ProviderLatency,
		StreamsActive,
		StreamFragmentsTotal,
		FramesSkippedTotal,
	)
}
