package product

// Candidate is a cloned product annotated by the scoring and ranking stages.
type Candidate struct {
	Product
	// HeuristicScore is the 0-10 relevance proxy assigned by the filter stage.
	HeuristicScore float64 `json:"heuristic_score"`
	// HybridScore is the final ranking score; zero until ranked.
	HybridScore float64 `json:"hybrid_score"`
}

// NewCandidate clones p so annotations never reach the stored record.
func NewCandidate(p *Product, heuristic float64) Candidate {
	return Candidate{Product: p.Clone(), HeuristicScore: heuristic}
}

// Products strips annotations.
func Products(cs []Candidate) []Product {
	out := make([]Product, len(cs))
	for i := range cs {
		out[i] = cs[i].Product
	}
	return out
}
