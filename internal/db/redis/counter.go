package redis

import (
	"context"
	"time"

	"github.com/kailas-cloud/typesense-mcp/internal/db"
)

// IncrWindow runs INCR and EXPIRE NX in one round trip. EXPIRE NX only sets
// a TTL on a key that has none, so the window starts at the first increment.
func (s *Store) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	secs := max(int64(window/time.Second), 1)
	results := s.client.DoMulti(ctx,
		s.b().Incr().Key(key).Build(),
		s.b().Expire().Key(key).Seconds(secs).Nx().Build(),
	)

	n, err := results[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpIncr, Err: err}
	}
	if err := results[1].Error(); err != nil {
		return 0, &db.Error{Op: db.OpExpire, Err: err}
	}
	return n, nil
}
