// Package ranking orders scored candidates by the hybrid relevance score.
package ranking

import (
	"slices"
	"strings"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/priority"
)

// DefaultTopN is used when topN <= 0.
const DefaultTopN = 5

const (
	heuristicScale = 10.0
	textWeight     = 0.5
)

// PriceStats describes the price distribution of a candidate set.
type PriceStats struct {
	Q1, Q3, Mean float64
	// Known is false when no candidate has a positive price.
	Known bool
}

// Stats computes quartiles (sorted[n/4], sorted[3n/4]) and the mean over positive prices.
func Stats(cs []domprod.Candidate) PriceStats {
	var prices []float64
	var sum float64
	for i := range cs {
		if p := cs[i].CurrentPrice(); p > 0 {
			prices = append(prices, p)
			sum += p
		}
	}
	if len(prices) == 0 {
		return PriceStats{}
	}
	slices.Sort(prices)
	n := len(prices)
	return PriceStats{
		Q1:    prices[n/4],
		Q3:    prices[3*n/4],
		Mean:  sum / float64(n),
		Known: true,
	}
}

// PriceValue returns the price-value factor for price under mode.
func (s PriceStats) PriceValue(price float64, mode priority.Mode) float64 {
	if price <= 0 || !s.Known || s.Mean <= 0 {
		return 1
	}
	switch mode {
	case priority.Quality:
		switch {
		case price > s.Q3:
			return 1.2
		case price > s.Mean:
			return 1.1
		case price < s.Q1:
			return 0.8
		default:
			return 1
		}
	case priority.Budget:
		switch {
		case price < s.Q1:
			return 1.3
		case price < s.Mean:
			return 1.1
		case price < s.Q3:
			return 0.9
		default:
			return 0.7
		}
	default:
		switch {
		case price >= s.Q1 && price <= s.Q3:
			return 1.2
		case price < s.Q1:
			return 0.9
		default:
			return 0.8
		}
	}
}

// Rank scores candidates, sorts them by hybrid score (descending, stable) and
// returns at most topN. The returned slice is new; HybridScore is set on it.
func Rank(cs []domprod.Candidate, c criteria.Criteria, mode priority.Mode, topN int) []domprod.Candidate {
	if len(cs) == 0 {
		return nil
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	mode = mode.OrDefault()

	stats := Stats(cs)
	words := strings.Fields(strings.ToLower(c.TextSearch))
	adjustPrice := !c.HasExplicitPriceWindow()

	out := slices.Clone(cs)
	for i := range out {
		out[i].HybridScore = Hybrid(&out[i], stats, words, mode, adjustPrice)
	}
	slices.SortStableFunc(out, func(a, b domprod.Candidate) int {
		switch {
		case a.HybridScore > b.HybridScore:
			return -1
		case a.HybridScore < b.HybridScore:
			return 1
		default:
			return 0
		}
	})
	return out[:min(topN, len(out))]
}

// Hybrid is quality * priceValue * (1 + heuristic/10) * (1 + text*0.5).
func Hybrid(cand *domprod.Candidate, stats PriceStats, words []string, mode priority.Mode, adjustPrice bool) float64 {
	pv := 1.0
	if adjustPrice {
		pv = stats.PriceValue(cand.CurrentPrice(), mode)
	}
	text := cand.MatchRatio(words)
	return cand.Quality() * pv * (1 + cand.HeuristicScore/heuristicScale) * (1 + text*textWeight)
}
