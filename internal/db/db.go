package db

import (
	"context"
	"time"
)

// Store is the key-value facade backing the HTTP rate limiter.
type Store interface {
	Pinger
	Counter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter maintains fixed-window counters.
type Counter interface {
	// IncrWindow increments key and returns the new value. The key expires
	// window after its first increment; later increments keep that expiry.
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}
