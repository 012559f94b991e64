package health

import (
	"context"
	"fmt"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the search engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used in Report.Checks.
const (
	ComponentEngine    = "typesense"
	ComponentRateLimit = "rate_limit_store"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks.
type Service struct {
	engine EngineChecker
	store  StorePinger
}

// New creates a Service. store can be nil when rate limiting is disabled.
func New(engine EngineChecker, store StorePinger) *Service {
	return &Service{engine: engine, store: store}
}

// Engine returns the engine's own health payload. A reachable engine that
// reports {"ok": false} is returned as is, without an error.
func (s *Service) Engine(ctx context.Context) (map[string]any, error) {
	out, err := s.engine.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine health: %w", err)
	}
	return out, nil
}

// Check runs health checks against all components. The engine is required;
// a failing rate-limit store only degrades the report.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentEngine] = CheckError
	if out, err := s.engine.Health(ctx); err == nil {
		if ok, _ := out["ok"].(bool); ok {
			checks[ComponentEngine] = CheckOK
		}
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks[ComponentRateLimit] = CheckError
		} else {
			checks[ComponentRateLimit] = CheckOK
		}
	}

	status := Healthy
	switch {
	case checks[ComponentEngine] == CheckError:
		status = Unhealthy
	case checks[ComponentRateLimit] == CheckError:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
