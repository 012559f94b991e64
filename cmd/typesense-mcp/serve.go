package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/typesense-mcp/internal/config"
	"github.com/kailas-cloud/typesense-mcp/internal/db"
	dbRedis "github.com/kailas-cloud/typesense-mcp/internal/db/redis"
	logpkg "github.com/kailas-cloud/typesense-mcp/internal/logger"
	"github.com/kailas-cloud/typesense-mcp/internal/metrics"
	chiTransport "github.com/kailas-cloud/typesense-mcp/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/typesense-mcp/internal/transport/mcp"
	collectionuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/collection"
	documentuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/document"
	healthuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/health"
	nlmodeluc "github.com/kailas-cloud/typesense-mcp/internal/usecase/nlmodel"
	raguc "github.com/kailas-cloud/typesense-mcp/internal/usecase/rag"
	"github.com/kailas-cloud/typesense-mcp/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/typesense-mcp/internal/usecase/search"
	"github.com/kailas-cloud/typesense-mcp/internal/version"
)

func runServe(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting typesense-mcp server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", envName),
		zap.String("transport", cfg.MCP.Transport),
		zap.String("typesense", cfg.Typesense.Host),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterMetrics()

	engine, err := newEngine(cfg.Typesense, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The rate-limit store is only used by the HTTP transport.
	var (
		store   db.Store
		limiter *ratelimit.Limiter
	)
	if cfg.MCP.Transport == config.TransportHTTP && cfg.RateLimit.Enabled() {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.RateLimit.Addrs,
			Password: cfg.RateLimit.Password,
		})
		if err != nil {
			return fmt.Errorf("create rate limit store: %w", err)
		}
		defer store.Close()

		readiness := time.Duration(cfg.RateLimit.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			return fmt.Errorf("rate limit store not ready: %w", err)
		}
		limiter = ratelimit.New(store, int64(cfg.RateLimit.RequestsPerMinute), ratelimit.DefaultWindow, logger)
		logger.Info("Rate limiting enabled", zap.Int("requests_per_minute", cfg.RateLimit.RequestsPerMinute))
	}

	// store stays a nil interface when rate limiting is off.
	healthSvc := healthuc.New(engine, store)

	server := mcpTransport.NewServer(cfg.MCP.Name, version.Version, mcpTransport.Services{
		Search:      searchuc.New(engine, cfg.Search.EmbeddingField),
		RAG:         raguc.New(engine, cfg.Search.EmbeddingField),
		Collections: collectionuc.New(engine),
		Documents:   documentuc.New(engine),
		NLModels:    nlmodeluc.New(engine),
		Health:      healthSvc,
	}, logger)

	if cfg.MCP.Transport == config.TransportStdio {
		logger.Info("Serving MCP over stdio")
		if err := server.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio server: %w", err)
		}
		logger.Info("Server stopped")
		return nil
	}

	var rl chiTransport.Limiter
	if limiter != nil {
		rl = limiter
	}
	return serveHTTP(ctx, cfg.HTTP, cfg.Auth, rl, chiTransport.NewServer(server.HTTPHandler(), healthSvc, logger), logger)
}

func serveHTTP(
	ctx context.Context,
	httpCfg config.HTTPConfig,
	authCfg config.AuthConfig,
	limiter chiTransport.Limiter,
	server *chiTransport.Server,
	logger *zap.Logger,
) error {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(authCfg.APIKeys))
	r.Use(chiTransport.RateLimitMiddleware(limiter))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", httpCfg.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     r,
		ReadTimeout: time.Duration(httpCfg.ReadTimeoutSec) * time.Second,
		// Streamable responses stay open for the length of a tool call.
		WriteTimeout: time.Duration(httpCfg.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(httpCfg.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("mcp_session", r.Header.Get(metrics.SessionHeader)),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
