package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// MCPPath is the streamable HTTP endpoint of the MCP server.
	MCPPath = "/mcp"
	// SessionHeader carries the streamable HTTP session id.
	SessionHeader = "Mcp-Session-Id"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds, excluding MCP event streams",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	mcpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "mcp_http_requests_total",
			Help:      "Requests to the MCP endpoint by kind and session state",
		},
		[]string{"kind", "session"}, // kind: rpc / stream / close / other; session: new / existing
	)

	mcpOpenStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "mcp_open_streams",
			Help:      "Server-sent event streams currently open on the MCP endpoint",
		},
	)
)

// Middleware records HTTP request duration and count. MCP endpoint traffic
// is also counted by kind; an event stream (GET) stays open for the life of
// a session, so it is tracked by mcp_open_streams instead of the histogram.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			stream := false
			if r.URL.Path == MCPPath {
				kind := mcpKind(r.Method)
				mcpRequestsTotal.WithLabelValues(kind, sessionState(r)).Inc()
				if kind == "stream" {
					stream = true
					mcpOpenStreams.Inc()
					defer mcpOpenStreams.Dec()
				}
			}

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			status := strconv.Itoa(ww.status)
			httpRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			if !stream {
				httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
			}
		})
	}
}

// routeLabel uses the matched chi pattern so path parameters never become
// label values. Unmatched requests share one label.
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "unknown"
	}
	pattern := strings.TrimSuffix(rctx.RoutePattern(), "/*")
	if pattern == "" {
		return "unknown"
	}
	return pattern
}

func mcpKind(method string) string {
	switch method {
	case http.MethodPost:
		return "rpc"
	case http.MethodGet:
		return "stream"
	case http.MethodDelete:
		return "close"
	default:
		return "other"
	}
}

func sessionState(r *http.Request) string {
	if r.Header.Get(SessionHeader) == "" {
		return "new"
	}
	return "existing"
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}

// Flush keeps streamed MCP responses working through the middleware.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
