package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_RecordsDurationAndCount(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/mcp", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	req := httptest.NewRequest("POST", "/mcp", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	requestsVal := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/mcp", "200"))
	if requestsVal < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", requestsVal)
	}

	durationCount := testutil.CollectAndCount(httpRequestDuration)
	if durationCount == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMetricsMiddleware_DifferentStatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/notfound", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/error", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/ok", "200"},
		{"/notfound", "404"},
		{"/error", "500"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestMetricsMiddleware_DifferentMethods(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	r.Get("/resource", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("get"))
	})
	r.Post("/resource", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("post"))
	})
	r.Delete("/resource", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("delete"))
	})

	methods := []string{"GET", "POST", "DELETE"}

	for _, method := range methods {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/resource", http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(method, "/resource", "200"))
			if val < 1 {
				t.Errorf("expected requests_total for %s >= 1, got %f", method, val)
			}
		})
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    string
	}{
		{"unmatched", "", "unknown"},
		{"plain route", "/health", "/health"},
		{"mounted handler", "/mcp/*", "/mcp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rctx := chi.NewRouteContext()
			if tt.pattern != "" {
				rctx.RoutePatterns = []string{tt.pattern}
			}
			req := httptest.NewRequest("GET", "/", http.NoBody)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			if got := routeLabel(req); got != tt.want {
				t.Errorf("routeLabel = %q, want %q", got, tt.want)
			}
		})
	}

	if got := routeLabel(httptest.NewRequest("GET", "/", http.NoBody)); got != "unknown" {
		t.Errorf("request outside chi: got %q", got)
	}
}

func TestMetricsMiddleware_MCPKinds(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.HandleFunc(MCPPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if got := testutil.ToFloat64(mcpOpenStreams); got < 1 {
				t.Errorf("expected an open stream while serving GET, got %f", got)
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		method  string
		session string
		kind    string
		state   string
	}{
		{"POST", "", "rpc", "new"},
		{"POST", "abc", "rpc", "existing"},
		{"GET", "abc", "stream", "existing"},
		{"DELETE", "abc", "close", "existing"},
	}
	for _, tt := range tests {
		t.Run(tt.method+"_"+tt.state, func(t *testing.T) {
			before := testutil.ToFloat64(mcpRequestsTotal.WithLabelValues(tt.kind, tt.state))
			req := httptest.NewRequest(tt.method, MCPPath, http.NoBody)
			if tt.session != "" {
				req.Header.Set(SessionHeader, tt.session)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)

			if got := testutil.ToFloat64(mcpRequestsTotal.WithLabelValues(tt.kind, tt.state)); got != before+1 {
				t.Errorf("mcp_http_requests_total{%s,%s} = %f, want %f", tt.kind, tt.state, got, before+1)
			}
		})
	}

	if got := testutil.ToFloat64(mcpOpenStreams); got != 0 {
		t.Errorf("streams must be closed after the handler returns, got %f", got)
	}
}

func TestMetricsMiddleware_PreservesFlusher(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	flushed := false
	r.Post("/mcp", func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Error("wrapped writer must implement http.Flusher")
			return
		}
		_, _ = w.Write([]byte("event: message\n\n"))
		f.Flush()
		flushed = true
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("POST", "/mcp", http.NoBody))

	if !flushed || !rr.Flushed {
		t.Error("expected the response to be flushed")
	}
}

func TestMetricsHandler_ViaPromhttp(t *testing.T) {
	RegisterMetrics()
	ToolCallsTotal.WithLabelValues("check_health", "ok").Inc()

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	body, err := io.ReadAll(rr.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	for _, name := range []string{
		"typesense_mcp_tool_calls_total",
		"typesense_mcp_http_requests_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
