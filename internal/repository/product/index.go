package product

import (
	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
)

// Index returns the FT index definition over product JSON documents.
// Field aliases are the names query.Expression constrains. Title and brand are
// not stemmed because the catalog mixes Turkish and English text.
func Index(catalog domain.CatalogConfig) *db.IndexDefinition {
	return db.NewIndex(catalog.IndexName).
		OnJSON().
		Prefix(catalog.ProductKeyPrefix()).
		Text("$.title", query.FieldTitle, 2, db.NoStem()).
		Text("$.brand", query.FieldBrand, 1, db.NoStem()).
		Tag("$.categories[*]", query.FieldCategories).
		Numeric("$.price.current", query.FieldPrice, db.Sortable()).
		Numeric("$.rating", query.FieldRating, db.Sortable()).
		Numeric("$.review_count", query.FieldReviews).
		Tag("$.feature_tags[*]", query.FieldFeatures).
		MustBuild()
}
