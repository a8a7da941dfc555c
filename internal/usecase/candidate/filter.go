// Package candidate gates, samples and scores retrieved products.
package candidate

import (
	"slices"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/priority"
)

const (
	// MinRating is the quality gate on effective rating.
	MinRating = 2.5
	// MinReviews is the quality gate on effective review count.
	MinReviews = 3
	// MaxSelected bounds the sampled subset.
	MaxSelected = 10

	minKeywordRunes = 3
	matchBoost      = 2.0
)

type bucket int

const (
	bucketLow bucket = iota
	bucketMidLow
	bucketMidHigh
	bucketHigh
)

// bucketCaps favour the middle of the price distribution.
var bucketCaps = [...]int{
	bucketLow:     0,
	bucketMidLow:  2,
	bucketMidHigh: 5,
	bucketHigh:    3,
}

// Filter runs the gate, selection and scoring stages.
type Filter struct {
	scorer Scorer
	logger *zap.Logger
}

// New creates a Filter. A nil scorer means HeuristicScorer.
func New(scorer Scorer, logger *zap.Logger) *Filter {
	if scorer == nil {
		scorer = HeuristicScorer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filter{scorer: scorer, logger: logger}
}

type proxied struct {
	p     *domprod.Product
	proxy float64
}

// FilterAndScore drops low-quality products, samples a price-balanced subset
// when there are more than MaxSelected survivors and scores the result. The
// subset takes at most the bucket cap from each price quartile, so it can hold
// fewer than MaxSelected. The inputs are never modified; returned candidates
// hold clones.
func (f *Filter) FilterAndScore(products []domprod.Product, positive, negative string) ([]domprod.Candidate, priority.Mode) {
	mode := priority.Default
	if len(products) == 0 {
		return nil, mode
	}

	survivors := make([]*domprod.Product, 0, len(products))
	for i := range products {
		p := &products[i]
		if p.EffectiveRating() >= MinRating && p.EffectiveReviewCount() >= MinReviews {
			survivors = append(survivors, p)
		}
	}
	if len(survivors) == 0 {
		f.logger.Debug("quality gate removed every candidate", zap.Int("input", len(products)))
		return nil, mode
	}

	selected := survivors
	if len(survivors) > MaxSelected {
		selected = selectBalanced(survivors, Keywords(positive))
	}

	out := make([]domprod.Candidate, len(selected))
	for i, p := range selected {
		out[i] = domprod.NewCandidate(p, f.scorer.Score(p, positive, negative))
	}
	f.logger.Debug("candidates selected",
		zap.Int("input", len(products)),
		zap.Int("survivors", len(survivors)),
		zap.Int("selected", len(out)),
	)
	return out, mode
}

// Keywords returns the lower-cased words of s with at least three runes.
func Keywords(s string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if utf8.RuneCountInString(w) >= minKeywordRunes {
			out = append(out, w)
		}
	}
	return out
}

// Proxy is the selection score: quality boosted by keyword match.
func Proxy(p *domprod.Product, keywords []string) float64 {
	return p.Quality() * (1 + matchBoost*p.MatchRatio(keywords))
}

func selectBalanced(survivors []*domprod.Product, keywords []string) []*domprod.Product {
	scored := make([]proxied, len(survivors))
	var prices []float64
	for i, p := range survivors {
		scored[i] = proxied{p: p, proxy: Proxy(p, keywords)}
		if price := p.CurrentPrice(); price > 0 {
			prices = append(prices, price)
		}
	}

	if len(prices) == 0 {
		byProxy(scored)
		return take(scored, MaxSelected)
	}

	slices.Sort(prices)
	n := len(prices)
	s := n / 4
	thresholds := [3]float64{prices[s], prices[2*s], prices[3*s]}

	var buckets [4][]proxied
	for _, c := range scored {
		b := bucketOf(c.p.CurrentPrice(), thresholds)
		buckets[b] = append(buckets[b], c)
	}

	var out []*domprod.Product
	for b := range buckets {
		byProxy(buckets[b])
		for _, c := range buckets[b][:min(bucketCaps[b], len(buckets[b]))] {
			out = append(out, c.p)
		}
	}
	return out
}

func bucketOf(price float64, t [3]float64) bucket {
	switch {
	case price <= t[0]:
		return bucketLow
	case price <= t[1]:
		return bucketMidLow
	case price <= t[2]:
		return bucketMidHigh
	default:
		return bucketHigh
	}
}

// byProxy sorts descending by proxy; ties keep input order.
func byProxy(cs []proxied) {
	slices.SortStableFunc(cs, func(a, b proxied) int {
		switch {
		case a.proxy > b.proxy:
			return -1
		case a.proxy < b.proxy:
			return 1
		default:
			return 0
		}
	})
}

func take(cs []proxied, n int) []*domprod.Product {
	out := make([]*domprod.Product, 0, min(n, len(cs)))
	for _, c := range cs[:min(n, len(cs))] {
		out = append(out, c.p)
	}
	return out
}
