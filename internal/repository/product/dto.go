package product

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/kailas-cloud/recodex/internal/domain"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
)

// productDoc is the stored JSON document: the product plus index-only fields.
type productDoc struct {
	domprod.Product
	Tags        []string `json:"feature_tags,omitempty"`
	ReviewTotal int      `json:"review_count"`
}

func buildDoc(p *domprod.Product) productDoc {
	return productDoc{
		Product:     *p,
		Tags:        p.FeatureTags(),
		ReviewTotal: p.EffectiveReviewCount(),
	}
}

func encodeDoc(p *domprod.Product) ([]byte, error) {
	data, err := json.Marshal(buildDoc(p))
	if err != nil {
		return nil, fmt.Errorf("marshal product %s: %w", p.ID, err)
	}
	return data, nil
}

// decodeDoc parses a stored document. JSONPath reads return a one-element array.
func decodeDoc(raw string) (domprod.Product, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) > 0 && data[0] == '[' {
		var list []domprod.Product
		if err := json.Unmarshal(data, &list); err != nil {
			return domprod.Product{}, fmt.Errorf("unmarshal product list: %w", err)
		}
		if len(list) == 0 {
			return domprod.Product{}, domain.ErrProductNotFound
		}
		return list[0], nil
	}
	var p domprod.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return domprod.Product{}, fmt.Errorf("unmarshal product: %w", err)
	}
	return p, nil
}

// StableID derives a deterministic product ID from its URL, or from brand and
// title when no URL is known, so re-ingesting a feed overwrites instead of duplicating.
func StableID(p *domprod.Product) string {
	name := strings.TrimSpace(p.URL)
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(p.Brand) + "|" + strings.TrimSpace(p.Title))
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func validate(p *domprod.Product) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidProduct)
	}
	if len(p.Categories) == 0 {
		return fmt.Errorf("%w: at least one category is required", domain.ErrInvalidProduct)
	}
	if strings.ContainsAny(p.ID, " \t\n") {
		return fmt.Errorf("%w: id %q contains whitespace", domain.ErrInvalidProduct, p.ID)
	}
	return nil
}
