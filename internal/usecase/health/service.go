package health

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means recommendations still work, with fallbacks.
	Degraded Status = "degraded"
	// Unhealthy means the catalog cannot be queried.
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

// Component names reported in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentLLM      = "llm"
	ComponentBreaker  = "catalog_breaker"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	llm     LLMChecker
	breaker BreakerReporter
	timeout time.Duration
}

// New creates a Service. llm and breaker can be nil.
func New(db DBPinger, llm LLMChecker, breaker BreakerReporter) *Service {
	return &Service{db: db, llm: llm, breaker: breaker, timeout: DefaultCheckTimeout}
}

// Check runs the component checks concurrently. A database failure makes the
// service unhealthy; any other failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	var mu sync.Mutex
	checks := make(map[string]CheckResult)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			checks[name] = CheckError
		} else {
			checks[name] = CheckOK
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		record(ComponentDatabase, s.db.Ping(cctx))
		return nil
	})
	if s.llm != nil {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record(ComponentLLM, s.llm.HealthCheck(cctx))
			return nil
		})
	}
	_ = g.Wait()

	if s.breaker != nil {
		if s.breaker.State() == gobreaker.StateOpen {
			checks[ComponentBreaker] = CheckError
		} else {
			checks[ComponentBreaker] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentDatabase] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
