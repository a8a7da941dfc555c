package health

import (
	"context"

	"github.com/sony/gobreaker/v2"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks language model provider availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

// BreakerReporter exposes the catalog circuit breaker state.
type BreakerReporter interface {
	State() gobreaker.State
}
