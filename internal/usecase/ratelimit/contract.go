package ratelimit

import (
	"context"
	"time"
)

// Counter maintains fixed-window counters.
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
