// Package retrieval runs the layered, category-locked candidate search.
package retrieval

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
	"github.com/kailas-cloud/recodex/internal/metrics"
)

// DefaultLimit caps the candidates returned by one attempt.
const DefaultLimit = 300

// Stage names reported in Result.Stage and metrics.
const (
	StageExact    = "exact"
	StageRelaxed  = "relaxed"
	StageContains = "contains"
	StageText     = "text"
	StageLoose    = "loose"
	stageNone     = "none"
)

// minCategoryWord is the rune count a category word must exceed to get its own contains attempt.
const minCategoryWord = 3

// Result is the outcome of one retrieval.
type Result struct {
	Products []domprod.Product
	// Category is the resolved category, empty when none could be determined.
	Category string
	// Stage names the attempt that produced Products.
	Stage string
	// Searched is false when no store query was run.
	Searched bool
}

// Attempt is one query of the retrieval ladder.
type Attempt struct {
	Stage string
	Query query.Query
}

// Service retrieves candidates.
type Service struct {
	repo    Repository
	builder QueryBuilder
	logger  *zap.Logger
}

// New creates a retrieval service.
func New(repo Repository, builder QueryBuilder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, builder: builder, logger: logger}
}

// Retrieve runs the attempts in order and returns the first non-empty result.
// Results are never merged across attempts. Store failures skip the attempt.
func (s *Service) Retrieve(ctx context.Context, c criteria.Criteria, limit int) Result {
	if limit <= 0 {
		limit = DefaultLimit
	}
	start := time.Now()

	base, category := s.builder.Build(c)
	if category == "" {
		s.logger.Debug("no category resolved, skipping search")
		return Result{}
	}
	res := Result{Category: category}

	n, err := s.repo.CountCategory(ctx, category)
	if err != nil {
		s.logger.Warn("category existence check failed",
			zap.String("category", category), zap.Error(err))
		return res
	}
	if n == 0 {
		s.logger.Debug("category has no products", zap.String("category", category))
		return res
	}

	res.Searched = true
	for _, a := range Attempts(base, category, c) {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("retrieval canceled", zap.String("stage", a.Stage), zap.Error(err))
			break
		}
		products, err := s.repo.Find(ctx, a.Query, limit)
		if err != nil {
			metrics.RetrievalAttemptsTotal.WithLabelValues(stageLabel(a.Stage), "error").Inc()
			s.logger.Warn("retrieval attempt failed",
				zap.String("stage", a.Stage),
				zap.Stringer("query", a.Query),
				zap.Error(err),
			)
			continue
		}
		if len(products) == 0 {
			metrics.RetrievalAttemptsTotal.WithLabelValues(stageLabel(a.Stage), "empty").Inc()
			continue
		}
		metrics.RetrievalAttemptsTotal.WithLabelValues(stageLabel(a.Stage), "hit").Inc()
		metrics.RetrievalDuration.WithLabelValues(stageLabel(a.Stage)).Observe(time.Since(start).Seconds())
		s.logger.Debug("retrieval hit",
			zap.String("stage", a.Stage),
			zap.String("category", category),
			zap.Int("count", len(products)),
		)
		res.Products = products
		res.Stage = a.Stage
		return res
	}

	metrics.RetrievalDuration.WithLabelValues(stageNone).Observe(time.Since(start).Seconds())
	s.logger.Info("no products found", zap.String("category", category), zap.Stringer("criteria", c))
	return res
}

// Attempts lists the queries tried for category, in order. Every query carries
// a category constraint.
func Attempts(base query.Query, category string, c criteria.Criteria) []Attempt {
	out := []Attempt{{Stage: StageExact, Query: base.WithCategory(category, query.Exact)}}

	out = append(out, Attempt{Stage: StageRelaxed, Query: query.Query{
		PriceMin:      0,
		PriceMax:      math.Inf(1),
		Category:      category,
		CategoryMatch: query.Exact,
	}})

	for _, w := range strings.Fields(category) {
		if utf8.RuneCountInString(w) > minCategoryWord {
			out = append(out, Attempt{Stage: StageContains + ":" + w, Query: base.WithCategory(w, query.Contains)})
		}
	}

	if text := strings.TrimSpace(c.TextSearch); text != "" {
		q := base.WithCategory(category, query.Exact)
		q.TextSearch = text
		out = append(out, Attempt{Stage: StageText, Query: q})
	}

	out = append(out, Attempt{Stage: StageLoose, Query: query.Query{
		PriceMin:      c.PriceMin,
		PriceMax:      c.PriceMax,
		MinRating:     math.Max(c.MinRating, 0),
		Category:      category,
		CategoryMatch: query.Exact,
	}})
	return out
}

// stageLabel keeps the metric cardinality bounded by dropping the contains word.
func stageLabel(stage string) string {
	if strings.HasPrefix(stage, StageContains+":") {
		return StageContains
	}
	return stage
}
