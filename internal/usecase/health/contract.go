package health

import "context"

// EngineChecker reports search engine health.
type EngineChecker interface {
	Health(ctx context.Context) (map[string]any, error)
}

// StorePinger checks availability of the rate-limit store.
type StorePinger interface {
	Ping(ctx context.Context) error
}
