// Package recommend runs the recommendation pipeline with price-window widening.
package recommend

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/priority"
	"github.com/kailas-cloud/recodex/internal/metrics"
	"github.com/kailas-cloud/recodex/internal/usecase/ranking"
	"github.com/kailas-cloud/recodex/internal/usecase/retrieval"
)

const (
	// MaxExpansions bounds the price widening attempts per request.
	MaxExpansions = 3

	minDelta     = 100.0
	initialRatio = 0.1
	growth       = 1.5
)

// Result is a ranked recommendation.
type Result struct {
	Products []domprod.Candidate
	Priority priority.Mode
	// Criteria is the normalized input criteria, before any widening.
	Criteria criteria.Criteria
	// Category is the resolved category; empty when none was found.
	Category string
	// Searched is false when no store query ran.
	Searched bool
	// Expansions counts the widening attempts made.
	Expansions int
}

// Config tunes the pipeline.
type Config struct {
	TopN           int
	CandidateLimit int
}

// Service runs the recommendation pipeline.
type Service struct {
	retriever Retriever
	filter    CandidateFilter
	cfg       Config
	logger    *zap.Logger
}

// New creates a recommendation service.
func New(retriever Retriever, filter CandidateFilter, cfg Config, logger *zap.Logger) *Service {
	if cfg.TopN <= 0 {
		cfg.TopN = ranking.DefaultTopN
	}
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = retrieval.DefaultLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{retriever: retriever, filter: filter, cfg: cfg, logger: logger}
}

// Recommend runs the pipeline once and, when it yields fewer than topN products
// for an explicit price window, widens the window up to MaxExpansions times.
// topN <= 0 uses the configured default.
func (s *Service) Recommend(ctx context.Context, c criteria.Criteria, topN int) Result {
	if topN <= 0 {
		topN = s.cfg.TopN
	}
	c = criteria.Normalize(c)

	best, category, searched := s.run(ctx, c, topN)
	res := Result{
		Products: best.products,
		Priority: best.mode,
		Criteria: c,
		Category: category,
		Searched: searched,
	}

	if len(res.Products) < topN && searched && c.HasExplicitPriceWindow() {
		res.Expansions = s.expand(ctx, c, topN, &res)
	}

	metrics.RecommendationsTotal.WithLabelValues(string(res.Priority), outcome(len(res.Products), topN)).Inc()
	s.logger.Info("recommendation",
		zap.String("category", res.Category),
		zap.String("priority", string(res.Priority)),
		zap.Int("count", len(res.Products)),
		zap.Int("expansions", res.Expansions),
	)
	return res
}

type ranked struct {
	products []domprod.Candidate
	mode     priority.Mode
}

// run is one retrieve, filter and rank pass.
func (s *Service) run(ctx context.Context, c criteria.Criteria, topN int) (ranked, string, bool) {
	r := s.retriever.Retrieve(ctx, c, s.cfg.CandidateLimit)
	if len(r.Products) == 0 {
		return ranked{mode: priority.Default}, r.Category, r.Searched
	}
	cands, mode := s.filter.FilterAndScore(r.Products, c.TextSearch, c.NegativeTextSearch)
	return ranked{products: ranking.Rank(cands, c, mode, topN), mode: mode}, r.Category, r.Searched
}

// expand widens the price window around its midpoint. Any non-empty rerun
// replaces the current best, even if still short of topN.
func (s *Service) expand(ctx context.Context, c criteria.Criteria, topN int, res *Result) int {
	target := math.Floor((c.PriceMin + c.PriceMax) / 2)
	if c.PriceMax < c.PriceMin {
		target = c.PriceMin
	}
	delta := math.Max(minDelta, math.Round(math.Max(1, target)*initialRatio))
	lo, hi := c.PriceMin, c.PriceMax

	n := 0
	for n < MaxExpansions && len(res.Products) < topN {
		if ctx.Err() != nil {
			break
		}
		lo = math.Max(0, lo-delta)
		hi += delta
		n++

		widened := c.WithPriceWindow(lo, hi)
		s.logger.Debug("widening price window",
			zap.Int("attempt", n),
			zap.Float64("price_min", lo),
			zap.Float64("price_max", hi),
		)
		next, _, _ := s.run(ctx, widened, topN)
		if len(next.products) > 0 {
			res.Products = next.products
			res.Priority = next.mode
			metrics.ExpansionsTotal.WithLabelValues("improved").Inc()
		} else {
			metrics.ExpansionsTotal.WithLabelValues("empty").Inc()
		}
		delta = math.Max(minDelta, math.Round(delta*growth))
	}
	return n
}

func outcome(n, topN int) string {
	switch {
	case n == 0:
		return "empty"
	case n < topN:
		return "partial"
	default:
		return "full"
	}
}
