// Package chi serves the MCP endpoint and the operational routes over HTTP.
package chi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/typesense-mcp/internal/metrics"
	healthuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/health"
)

// Error codes of the HTTP error body.
const (
	codeUnauthorized = "unauthorized"
	codeRateLimited  = "rate_limited"
)

// ErrorResponse is the body of every non-MCP error response.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server holds the handlers mounted on the router.
type Server struct {
	mcp    http.Handler
	health *healthuc.Service
	logger *zap.Logger
}

// NewServer creates an HTTP server around the streamable MCP handler.
func NewServer(mcp http.Handler, health *healthuc.Service, logger *zap.Logger) *Server {
	return &Server{mcp: mcp, health: health, logger: logger}
}

// Routes registers the MCP endpoint, /health and /metrics on r.
func (s *Server) Routes(r chi.Router) {
	r.Handle(metrics.MCPPath, s.mcp)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// HealthCheck handles GET /health. Only an unreachable engine fails the check;
// a degraded rate-limit store still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
		s.logger.Warn("health check failed", zap.Any("checks", report.Checks))
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
