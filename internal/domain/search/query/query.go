// Package query holds the store-neutral product query produced from normalized criteria.
package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/search/filter"
)

// Indexed field names shared by the query lowering and the store schema.
const (
	FieldCategories = "categories"
	FieldPrice      = "price"
	FieldRating     = "rating"
	FieldReviews    = "reviews"
	FieldFeatures   = "features"
	FieldTitle      = "title"
	FieldBrand      = "brand"
)

// TextFields are searched by the full-text clause.
var TextFields = []string{FieldTitle, FieldBrand}

// CategoryMatch selects how the category constraint is applied.
type CategoryMatch int

const (
	// Exact requires a category tag equal to the category (case-insensitive).
	Exact CategoryMatch = iota
	// Contains requires a category tag containing the category as a substring.
	Contains
)

func (m CategoryMatch) String() string {
	if m == Contains {
		return "contains"
	}
	return "exact"
}

// FeatureConstraint restricts a product feature to (or away from) a value.
type FeatureConstraint struct {
	Field  string
	Value  string
	Negate bool
}

func (f FeatureConstraint) String() string {
	op := "=="
	if f.Negate {
		op = "!="
	}
	return f.Field + op + f.Value
}

// Query is a product query. PriceMax <= 0 or +Inf leaves the price unbounded above.
type Query struct {
	PriceMin      float64
	PriceMax      float64
	MinRating     float64
	MinReviews    int
	Category      string
	CategoryMatch CategoryMatch
	Features      []FeatureConstraint
	TextSearch    string
}

// Feature returns the constraint set on field, if any.
func (q Query) Feature(field string) (FeatureConstraint, bool) {
	for _, f := range q.Features {
		if f.Field == field {
			return f, true
		}
	}
	return FeatureConstraint{}, false
}

// SetFeature adds or replaces the constraint for c.Field, keeping insertion order.
func (q *Query) SetFeature(c FeatureConstraint) {
	for i := range q.Features {
		if q.Features[i].Field == c.Field {
			q.Features[i] = c
			return
		}
	}
	q.Features = append(q.Features, c)
}

// WithCategory returns a copy constrained to category using match.
func (q Query) WithCategory(category string, match CategoryMatch) Query {
	q.Category = category
	q.CategoryMatch = match
	q.Features = append([]FeatureConstraint(nil), q.Features...)
	return q
}

// TextWords returns the lower-cased words of TextSearch.
func (q Query) TextWords() []string {
	return strings.Fields(strings.ToLower(q.TextSearch))
}

// Expression lowers the query to a filter expression. Bounds that accept every
// value (price [0,+Inf), rating >= 0, reviews >= 0) are omitted so documents
// missing those fields still match.
func (q Query) Expression() (filter.Expression, error) {
	var must, mustNot []filter.Condition
	add := func(list *[]filter.Condition, c filter.Condition, err error) error {
		if err != nil {
			return err
		}
		*list = append(*list, c)
		return nil
	}

	if cat := strings.TrimSpace(q.Category); cat != "" {
		var err error
		var c filter.Condition
		if q.CategoryMatch == Contains {
			c, err = filter.NewContains(FieldCategories, cat)
		} else {
			c, err = filter.NewMatch(FieldCategories, cat)
		}
		if err := add(&must, c, err); err != nil {
			return filter.Expression{}, fmt.Errorf("category: %w", err)
		}
	}

	bounded := q.PriceMax > 0 && !math.IsInf(q.PriceMax, 1)
	if q.PriceMin > 0 || bounded {
		var hi *float64
		if bounded {
			v := q.PriceMax
			hi = &v
		}
		c, err := filter.NewRange(FieldPrice, filter.Between(math.Max(0, q.PriceMin), hi))
		if err := add(&must, c, err); err != nil {
			return filter.Expression{}, fmt.Errorf("price: %w", err)
		}
	}
	if q.MinRating > 0 {
		c, err := filter.NewRange(FieldRating, filter.AtLeast(q.MinRating))
		if err := add(&must, c, err); err != nil {
			return filter.Expression{}, fmt.Errorf("rating: %w", err)
		}
	}
	if q.MinReviews > 0 {
		c, err := filter.NewRange(FieldReviews, filter.AtLeast(float64(q.MinReviews)))
		if err := add(&must, c, err); err != nil {
			return filter.Expression{}, fmt.Errorf("reviews: %w", err)
		}
	}

	for _, f := range q.Features {
		c, err := filter.NewMatch(FieldFeatures, product.FeatureTag(f.Field, f.Value))
		target := &must
		if f.Negate {
			target = &mustNot
		}
		if err := add(target, c, err); err != nil {
			return filter.Expression{}, fmt.Errorf("feature %s: %w", f.Field, err)
		}
	}

	if words := q.TextWords(); len(words) > 0 {
		c, err := filter.NewText(TextFields, words)
		if err := add(&must, c, err); err != nil {
			return filter.Expression{}, fmt.Errorf("text: %w", err)
		}
	}

	return filter.NewExpression(must, nil, mustNot)
}

// String renders the query for logs.
func (q Query) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "category=%q/%s price=[%g,%g] rating>=%g reviews>=%d",
		q.Category, q.CategoryMatch, q.PriceMin, q.PriceMax, q.MinRating, q.MinReviews)
	for _, f := range q.Features {
		b.WriteString(" " + f.String())
	}
	if q.TextSearch != "" {
		fmt.Fprintf(&b, " text=%q", q.TextSearch)
	}
	return b.String()
}
