package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by the server.
const Namespace = "typesense_mcp"

// Search engine and tool Prometheus metrics.
var (
	EngineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "engine_requests_total",
			Help:      "Total number of requests sent to the search engine",
		},
		[]string{"op", "status"}, // status: "ok" / "engine_error" / "invalid" / "canceled" / "unreachable"
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Search engine request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tool_calls_total",
			Help:      "Total number of MCP tool calls",
		},
		[]string{"tool", "status"},
	)

	ToolCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "tool_call_duration_seconds",
			Help:      "MCP tool call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"tool"},
	)

	RAGChunksTruncatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rag_chunks_truncated_total",
			Help:      "RAG retrievals whose chunk query hit the per-page ceiling",
		},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rate_limited_total",
			Help:      "HTTP requests rejected by the rate limiter",
		},
	)
)

var registerOnce sync.Once

// RegisterMetrics registers every collector of the package. Safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(EngineRequestsTotal)
		prometheus.MustRegister(EngineRequestDuration)
		prometheus.MustRegister(ToolCallsTotal)
		prometheus.MustRegister(ToolCallDuration)
		prometheus.MustRegister(RAGChunksTruncatedTotal)
		prometheus.MustRegister(RateLimitedTotal)
		prometheus.MustRegister(httpRequestDuration)
		prometheus.MustRegister(httpRequestsTotal)
		prometheus.MustRegister(mcpRequestsTotal)
		prometheus.MustRegister(mcpOpenStreams)
	})
}
