// Package ratelimit implements a fixed-window request limiter per caller.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/typesense-mcp/internal/domain"
	"github.com/kailas-cloud/typesense-mcp/internal/metrics"
)

const keyPrefix = "typesense_mcp:rl:"

// DefaultWindow is the length of one counting window.
const DefaultWindow = time.Minute

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Limit     int64
	Remaining int64
}

// Limiter counts requests per caller in fixed windows.
type Limiter struct {
	store  Counter
	limit  int64
	window time.Duration
	logger *zap.Logger
}

// New creates a Limiter allowing limit requests per window.
func New(store Counter, limit int64, window time.Duration, logger *zap.Logger) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{store: store, limit: limit, window: window, logger: logger}
}

// Allow counts one request for caller. A store failure lets the request
// through and is logged; the limiter never blocks traffic on its own outage.
func (l *Limiter) Allow(ctx context.Context, caller string) Decision {
	n, err := l.store.IncrWindow(ctx, key(caller), l.window)
	if err != nil {
		l.logger.Warn("rate limit store unavailable, allowing request", zap.Error(err))
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}
	}

	if n > l.limit {
		metrics.RateLimitedTotal.Inc()
		return Decision{Allowed: false, Limit: l.limit, Remaining: 0}
	}
	return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit - n}
}

// Err returns a rate-limited error for a denied decision, nil otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%w: limit of %d requests per window reached", domain.ErrRateLimited, d.Limit)
}

// key hashes the caller so credentials never reach the store in clear text.
func key(caller string) string {
	sum := sha256.Sum256([]byte(caller))
	return keyPrefix + hex.EncodeToString(sum[:8])
}
