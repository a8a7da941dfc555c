// Package product models catalog products as read from the document store.
package product

import (
	"math"
	"sort"
	"strings"
)

// Product is a catalog record. It is read-only to the recommendation pipeline;
// annotate a Clone instead.
type Product struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Brand       string   `json:"brand,omitempty"`
	Categories  TextList `json:"categories"`
	Price       Price    `json:"price"`
	Rating      Number   `json:"rating"`
	RatingCount Count    `json:"rating_count"`
	Reviews     TextList `json:"reviews,omitempty"`
	Features    Features `json:"features,omitempty"`
	Images      TextList `json:"images,omitempty"`
	URL         string   `json:"product_url,omitempty"`
}

// Price holds the price block of a product.
type Price struct {
	Current Number `json:"current"`
}

// CurrentPrice returns the current price, 0 when unknown.
func (p *Product) CurrentPrice() float64 {
	return math.Max(0, float64(p.Price.Current))
}

// EffectiveRating returns the rating clamped to >= 0.
func (p *Product) EffectiveRating() float64 {
	return math.Max(0, float64(p.Rating))
}

// EffectiveReviewCount reconciles the stored counter with the review list,
// since the counter is often missing or zero for scraped records.
func (p *Product) EffectiveReviewCount() int {
	return max(int(p.RatingCount), len(p.Reviews), 0)
}

// Quality is rating weighted by the log of review volume.
func (p *Product) Quality() float64 {
	return p.EffectiveRating() * math.Log(float64(p.EffectiveReviewCount())+2)
}

// SearchText is the lower-cased text that keyword relevance is measured against:
// title, brand, categories and "key value" feature pairs.
func (p *Product) SearchText() string {
	parts := make([]string, 0, 2+len(p.Categories)+len(p.Features))
	parts = append(parts, p.Title, p.Brand)
	parts = append(parts, p.Categories...)
	for _, k := range p.Features.Keys() {
		parts = append(parts, k+" "+p.Features[k])
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// NeutralMatch is the keyword match ratio used when there are no keywords.
const NeutralMatch = 0.5

// MatchRatio returns the fraction of keywords found in SearchText, or
// NeutralMatch when keywords is empty. Keywords are expected lower-cased.
func (p *Product) MatchRatio(keywords []string) float64 {
	if len(keywords) == 0 {
		return NeutralMatch
	}
	text := p.SearchText()
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	return math.Min(float64(hits)/float64(len(keywords)), 1)
}

// FeatureTags returns the "key=value" tags the store indexes for feature constraints.
func (p *Product) FeatureTags() []string {
	keys := p.Features.Keys()
	tags := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := p.Features[k]; v != "" {
			tags = append(tags, FeatureTag(k, v))
		}
	}
	return tags
}

// FeatureTag formats a feature field/value pair as an index tag.
func FeatureTag(field, value string) string {
	return strings.TrimSpace(field) + "=" + strings.TrimSpace(value)
}

// Clone returns a deep copy.
func (p *Product) Clone() Product {
	c := *p
	c.Categories = cloneSlice(p.Categories)
	c.Reviews = cloneSlice(p.Reviews)
	c.Images = cloneSlice(p.Images)
	if p.Features != nil {
		c.Features = make(Features, len(p.Features))
		for k, v := range p.Features {
			c.Features[k] = v
		}
	}
	return c
}

// Keys returns feature names in a stable order.
func (f Features) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneSlice(s TextList) TextList {
	if s == nil {
		return nil
	}
	out := make(TextList, len(s))
	copy(out, s)
	return out
}
