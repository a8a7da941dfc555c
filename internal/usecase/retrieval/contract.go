package retrieval

import (
	"context"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
)

// Repository defines the storage contract for candidate retrieval.
type Repository interface {
	Find(ctx context.Context, q query.Query, limit int) ([]domprod.Product, error)
	CountCategory(ctx context.Context, category string) (int, error)
}

// QueryBuilder turns criteria into a base query and a resolved category.
type QueryBuilder interface {
	Build(c criteria.Criteria) (query.Query, string)
}
