// Package metrics registers the Prometheus metrics used by the chat client.
// Metrics are registered with the default registry at package init; a host
// process exposes them by mounting promhttp.Handler().
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Chat request counters and histograms.
var (
	// ChatRequestsTotal counts chat requests labelled by provider, model, and
	// outcome ("success", "error", "rejected"). Rejected requests failed
	// configuration checks before any network call.
	ChatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrochat_chat_requests_total",
			Help: "Total number of chat completion requests.",
		},
		[]string{"provider", "model", "status"},
	)

	// ChatRequestDuration observes chat request latency in seconds.
	ChatRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ferrochat_chat_request_duration_seconds",
			Help:    "Chat completion request duration in seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "model"},
	)

	// ChatErrors counts failures by provider and error type ("auth",
	// "not_found", "rate_limit", "api", "timeout", "malformed", "transport",
	// "configuration").
	ChatErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrochat_chat_errors_total",
			Help: "Total chat errors by type.",
		},
		[]string{"provider", "error_type"},
	)

	// TokensInput counts prompt tokens reported by providers.
	TokensInput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrochat_tokens_input_total",
			Help: "Total prompt tokens reported by providers.",
		},
		[]string{"provider", "model"},
	)

	// TokensOutput counts completion tokens reported by providers.
	TokensOutput = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrochat_tokens_output_total",
			Help: "Total completion tokens reported by providers.",
		},
		[]string{"provider", "model"},
	)
)

// Model discovery and cache metrics.
var (
	// DiscoveryRequestsTotal counts model listing calls by provider and
	// outcome ("success", "error").
	DiscoveryRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrochat_discovery_requests_total",
			Help: "Total model discovery requests.",
		},
		[]string{"provider", "status"},
	)

	// ModelCacheLookups counts model cache reads by result ("hit", "miss",
	// "expired").
	ModelCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ferrochat_model_cache_lookups_total",
			Help: "Total model cache lookups by result.",
		},
		[]string{"provider", "result"},
	)
)
