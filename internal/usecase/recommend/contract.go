package recommend

import (
	"context"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/priority"
	"github.com/kailas-cloud/recodex/internal/usecase/retrieval"
)

// Retriever fetches category-locked candidates.
type Retriever interface {
	Retrieve(ctx context.Context, c criteria.Criteria, limit int) retrieval.Result
}

// CandidateFilter gates and scores retrieved products.
type CandidateFilter interface {
	FilterAndScore(products []domprod.Product, positive, negative string) ([]domprod.Candidate, priority.Mode)
}
