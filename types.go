package recodex

import (
	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/usecase/describe"
)

// Criteria is the structured search intent extracted from a prompt.
type Criteria = criteria.Criteria

// Product is a catalog record.
type Product = domprod.Product

// Price holds the price block of a product.
type Price = domprod.Price

// Card is a rendered recommendation.
type Card = describe.Card

// Recommendation is the outcome of one recommendation request.
type Recommendation struct {
	// Criteria is the normalized intent, including any widened price window.
	Criteria Criteria `json:"criteria"`
	// Category is the catalog category the search was locked to, empty when
	// no category could be resolved.
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Expansions int    `json:"expansions"`
	Cards      []Card `json:"cards"`
	// Summary is a one-line human-readable outcome.
	Summary string `json:"summary"`
}

// IngestResult reports a catalog load.
type IngestResult struct {
	Stored   int
	Rejected []error
}
