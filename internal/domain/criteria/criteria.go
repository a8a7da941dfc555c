// Package criteria holds the structured search intent and its normalisation rules.
package criteria

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/recodex/internal/domain/number"
)

const (
	// DefaultPriceCeiling is the upper price bound meaning "no explicit limit".
	DefaultPriceCeiling = 99999.0
	// DefaultMinRating applies when the analyzer omits min_rating.
	DefaultMinRating = 4.0
	// MaxRating is the top of the rating scale.
	MaxRating = 5.0

	// exactPriceBand is the relative half-width used to widen an exact price point.
	exactPriceBand = 0.10
	// minPriceBand is the smallest half-width, in currency units.
	minPriceBand = 100.0
)

// Criteria is the normalised search intent. Treat values as immutable; derive
// variants with the With* helpers.
type Criteria struct {
	Category           string  `json:"category_search_string"`
	TextSearch         string  `json:"text_search"`
	NegativeTextSearch string  `json:"negative_text_search"`
	PriceMin           float64 `json:"price_min"`
	PriceMax           float64 `json:"price_max"`
	MinRating          float64 `json:"min_rating"`
}

// FromRaw builds normalised criteria from untrusted analyzer output.
// Missing fields fall back to defaults; it never fails.
func FromRaw(raw map[string]any) Criteria {
	c := Criteria{
		Category:           stringField(raw, "category_search_string", "category"),
		TextSearch:         stringField(raw, "text_search"),
		NegativeTextSearch: stringField(raw, "negative_text_search"),
		PriceMin:           number.ParseFloat(raw["price_min"]),
		PriceMax:           DefaultPriceCeiling,
		MinRating:          DefaultMinRating,
	}
	if v, ok := raw["price_max"]; ok && v != nil {
		c.PriceMax = number.ParseFloat(v)
	}
	if v, ok := raw["min_rating"]; ok && v != nil {
		c.MinRating = number.ParseFloat(v)
	}
	return Normalize(c)
}

// Normalize clamps c into canonical ranges. Normalize(Normalize(c)) == Normalize(c).
//
// An exact price point (min == max > 0) becomes a band of
// max(100, round(10%)) on each side.
func Normalize(c Criteria) Criteria {
	c.Category = strings.TrimSpace(c.Category)
	c.TextSearch = strings.TrimSpace(c.TextSearch)
	c.NegativeTextSearch = strings.TrimSpace(c.NegativeTextSearch)

	if math.IsNaN(c.MinRating) {
		c.MinRating = 0
	}
	c.MinRating = math.Max(0, math.Min(MaxRating, c.MinRating))

	if math.IsNaN(c.PriceMin) || math.IsInf(c.PriceMin, 0) || c.PriceMin < 0 {
		c.PriceMin = 0
	}
	if math.IsNaN(c.PriceMax) || math.IsInf(c.PriceMax, 0) || c.PriceMax <= 0 {
		c.PriceMax = DefaultPriceCeiling
	}
	if c.PriceMax < c.PriceMin {
		c.PriceMax = c.PriceMin
	}

	if c.PriceMin > 0 && c.PriceMin == c.PriceMax {
		target := c.PriceMin
		delta := math.Max(minPriceBand, math.Round(target*exactPriceBand))
		c.PriceMin = math.Max(0, target-delta)
		c.PriceMax = target + delta
	}

	if c.PriceMax < c.PriceMin {
		c.PriceMax = c.PriceMin
	}
	return c
}

// HasExplicitPriceWindow reports whether the user narrowed the price range.
func (c Criteria) HasExplicitPriceWindow() bool {
	return c.PriceMin > 0 || c.PriceMax < DefaultPriceCeiling
}

// WithPriceWindow returns a copy of c with new price bounds. Other fields are untouched.
func (c Criteria) WithPriceWindow(minPrice, maxPrice float64) Criteria {
	c.PriceMin = minPrice
	c.PriceMax = maxPrice
	return c
}

// Keywords returns the lower-cased whitespace tokens of the positive text search.
func (c Criteria) Keywords() []string {
	return strings.Fields(strings.ToLower(c.TextSearch))
}

// String renders a compact form for logs.
func (c Criteria) String() string {
	return fmt.Sprintf("category=%q text=%q not=%q price=[%g,%g] rating>=%g",
		c.Category, c.TextSearch, c.NegativeTextSearch, c.PriceMin, c.PriceMax, c.MinRating)
}

// stringField returns the first present key as a trimmed string. Keyword lists
// are joined with spaces.
func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch x := v.(type) {
		case string:
			return strings.TrimSpace(x)
		case []any:
			parts := make([]string, 0, len(x))
			for _, item := range x {
				if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, " ")
		case []string:
			return strings.TrimSpace(strings.Join(x, " "))
		default:
			return strings.TrimSpace(fmt.Sprint(x))
		}
	}
	return ""
}
