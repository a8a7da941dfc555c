package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
	"github.com/kailas-cloud/recodex/internal/metrics"
)

// finder is the read side the recommendation pipeline needs.
type finder interface {
	Find(ctx context.Context, q query.Query, limit int) ([]domprod.Product, error)
	CountCategory(ctx context.Context, category string) (int, error)
}

// BreakerConfig configures Guarded.
type BreakerConfig struct {
	Name string
	// QueryTimeout bounds each store call; zero disables it.
	QueryTimeout time.Duration
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// HalfOpenRequests is the number of probes allowed while half-open.
	HalfOpenRequests uint32
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "catalog-store",
		QueryTimeout:        2 * time.Second,
		ConsecutiveFailures: 5,
		OpenTimeout:         15 * time.Second,
		HalfOpenRequests:    1,
	}
}

// Guarded wraps the product reads with a per-call timeout and a circuit breaker.
// While the breaker is open calls fail immediately with domain.ErrStoreUnavailable.
type Guarded struct {
	inner   finder
	cb      *gobreaker.CircuitBreaker[any]
	timeout time.Duration
	logger  *zap.Logger
}

// NewGuarded wraps inner.
func NewGuarded(inner finder, cfg BreakerConfig, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = def.ConsecutiveFailures
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = def.HalfOpenRequests
	}

	metrics.StoreBreakerState.WithLabelValues(cfg.Name).Set(0)

	threshold := cfg.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// A caller giving up or a missing index says nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || db.IsNotFound(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state change",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.StoreBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Guarded{inner: inner, cb: cb, timeout: cfg.QueryTimeout, logger: logger}
}

// Find calls the wrapped Find through the breaker.
func (g *Guarded) Find(ctx context.Context, q query.Query, limit int) ([]domprod.Product, error) {
	v, err := g.execute(ctx, "find", func(ctx context.Context) (any, error) {
		return g.inner.Find(ctx, q, limit)
	})
	if err != nil {
		return nil, err
	}
	products, _ := v.([]domprod.Product)
	return products, nil
}

// CountCategory calls the wrapped CountCategory through the breaker.
func (g *Guarded) CountCategory(ctx context.Context, category string) (int, error) {
	v, err := g.execute(ctx, "count_category", func(ctx context.Context) (any, error) {
		return g.inner.CountCategory(ctx, category)
	})
	if err != nil {
		return 0, err
	}
	n, _ := v.(int)
	return n, nil
}

// State reports the breaker state for health checks.
func (g *Guarded) State() gobreaker.State {
	return g.cb.State()
}

func (g *Guarded) execute(ctx context.Context, op string, fn func(context.Context) (any, error)) (any, error) {
	v, err := g.cb.Execute(func() (any, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return fn(callCtx)
	})
	switch {
	case err == nil:
		metrics.StoreRequestsTotal.WithLabelValues(op, "success").Inc()
		return v, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.StoreRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
	default:
		metrics.StoreRequestsTotal.WithLabelValues(op, "failure").Inc()
		return nil, err
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
