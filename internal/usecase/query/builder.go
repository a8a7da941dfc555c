// Package query turns normalized criteria into a store query and a resolved category.
package query

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domquery "github.com/kailas-cloud/recodex/internal/domain/search/query"
)

// Quality floors applied to every base query.
const (
	QualityFloor = 2.5
	MinReviews   = 1
)

// Builder builds base queries. Safe for concurrent use.
type Builder struct {
	rules  Rules
	logger *zap.Logger
}

// NewBuilder creates a Builder over rules.
func NewBuilder(rules Rules, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{rules: rules, logger: logger}
}

// Build returns the base query and the resolved category. Neither the category
// nor the full-text clause is applied; the retriever decides how to use them.
func (b *Builder) Build(c criteria.Criteria) (domquery.Query, string) {
	q := domquery.Query{
		PriceMin:   c.PriceMin,
		PriceMax:   c.PriceMax,
		MinRating:  math.Max(c.MinRating, QualityFloor),
		MinReviews: MinReviews,
	}
	if q.PriceMax <= 0 {
		q.PriceMax = math.Inf(1)
	}

	category := b.ResolveCategory(c.Category, c.NegativeTextSearch)
	b.applyFeatures(&q, strings.ToLower(c.TextSearch), strings.ToLower(c.NegativeTextSearch))
	return q, category
}

// ResolveCategory applies negative-keyword routing: the primary table first,
// then the legacy table. Without a match the category is returned trimmed.
func (b *Builder) ResolveCategory(category, negative string) string {
	category = strings.TrimSpace(category)
	negative = strings.TrimSpace(negative)
	if category == "" || negative == "" {
		return category
	}
	cat, neg := strings.ToLower(category), strings.ToLower(negative)

	target, ok := matchRoute(b.rules.Routes, cat, neg)
	if !ok {
		target, ok = matchRoute(b.rules.LegacyRoutes, cat, neg)
	}
	if !ok || target == category {
		return category
	}
	b.logger.Debug("category redirected",
		zap.String("from", category),
		zap.String("negative", negative),
		zap.String("to", target),
	)
	return target
}

func matchRoute(routes []CategoryRoute, cat, neg string) (string, bool) {
	for _, r := range routes {
		if strings.Contains(cat, r.CategoryKey) && strings.Contains(neg, r.NegativeKey) {
			return r.Target, true
		}
	}
	return "", false
}

// applyFeatures adds feature constraints. Positive equality hits overwrite each
// other; every later pass only fills fields that are still unset.
func (b *Builder) applyFeatures(q *domquery.Query, positive, negative string) {
	if positive != "" {
		for _, r := range b.rules.Equals {
			if strings.Contains(positive, r.Keyword) {
				q.SetFeature(domquery.FeatureConstraint{Field: r.Field, Value: r.Value})
			}
		}
	}
	if negative != "" {
		for _, r := range b.rules.Equals {
			if strings.Contains(negative, r.Keyword) {
				setIfUnset(q, domquery.FeatureConstraint{Field: r.Field, Value: r.Value, Negate: true})
			}
		}
	}
	if positive != "" {
		for _, r := range b.rules.Presence {
			if strings.Contains(positive, r.Keyword) {
				setIfUnset(q, domquery.FeatureConstraint{Field: r.Field, Value: PresenceYes})
			}
		}
	}
	if negative != "" {
		for _, r := range b.rules.Presence {
			if strings.Contains(negative, r.Keyword) {
				setIfUnset(q, domquery.FeatureConstraint{Field: r.Field, Value: PresenceNo})
			}
		}
	}
	if len(q.Features) > 0 {
		b.logger.Debug("feature constraints", zap.Stringers("features", q.Features))
	}
}

func setIfUnset(q *domquery.Query, c domquery.FeatureConstraint) {
	if _, ok := q.Feature(c.Field); !ok {
		q.SetFeature(c)
	}
}
