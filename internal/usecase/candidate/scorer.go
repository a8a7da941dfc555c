package candidate

import domprod "github.com/kailas-cloud/recodex/internal/domain/product"

// Scorer assigns a 0-10 relevance score to a selected product.
type Scorer interface {
	Score(p *domprod.Product, positive, negative string) float64
}

// HeuristicScorer scores by rating alone.
type HeuristicScorer struct{}

// Score returns rating * 2.
func (HeuristicScorer) Score(p *domprod.Product, _, _ string) float64 {
	return p.EffectiveRating() * 2
}
