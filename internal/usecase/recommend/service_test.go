package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/priority"
	"github.com/kailas-cloud/recodex/internal/usecase/candidate"
	"github.com/kailas-cloud/recodex/internal/usecase/retrieval"
)

// --- Mocks ---

// mockRetriever serves products whose price falls inside the criteria window.
type mockRetriever struct {
	catalog  []domprod.Product
	category string
	searched bool
	calls    []criteria.Criteria
}

func (m *mockRetriever) Retrieve(_ context.Context, c criteria.Criteria, _ int) retrieval.Result {
	m.calls = append(m.calls, c)
	res := retrieval.Result{Category: m.category, Searched: m.searched}
	if !m.searched {
		return res
	}
	for _, p := range m.catalog {
		if price := p.CurrentPrice(); price >= c.PriceMin && price <= c.PriceMax {
			res.Products = append(res.Products, p)
		}
	}
	return res
}

func phone(id string, price float64) domprod.Product {
	return domprod.Product{
		ID:          id,
		Title:       "Phone " + id,
		Categories:  domprod.TextList{"Android Phones"},
		Price:       domprod.Price{Current: domprod.Number(price)},
		Rating:      4.5,
		RatingCount: 40,
	}
}

func newService(r Retriever) *Service {
	return New(r, candidate.New(nil, nil), Config{}, nil)
}

// --- Tests ---

func TestRecommend_FullResultNoExpansion(t *testing.T) {
	var catalog []domprod.Product
	for i := range 8 {
		catalog = append(catalog, phone(fmt.Sprint(i), float64(1000+i*100)))
	}
	r := &mockRetriever{catalog: catalog, category: "Android Phones", searched: true}
	res := newService(r).Recommend(context.Background(), criteria.Criteria{
		Category: "Android Phones", PriceMin: 1000, PriceMax: 2000, MinRating: 4,
	}, 0)

	if len(res.Products) != 5 {
		t.Fatalf("len = %d", len(res.Products))
	}
	if res.Expansions != 0 || len(r.calls) != 1 {
		t.Errorf("expansions = %d, calls = %d", res.Expansions, len(r.calls))
	}
	if res.Priority != priority.PricePerformance || res.Category != "Android Phones" {
		t.Errorf("res = %+v", res)
	}
}

func TestRecommend_WideningReplacesNarrowResult(t *testing.T) {
	catalog := []domprod.Product{phone("in1", 9100), phone("in2", 9400)}
	for i := range 6 {
		catalog = append(catalog, phone(fmt.Sprint("near", i), float64(8200+i*300)))
	}
	r := &mockRetriever{catalog: catalog, category: "Android Phones", searched: true}
	in := criteria.Criteria{Category: "Android Phones", PriceMin: 9000, PriceMax: 9500}
	res := newService(r).Recommend(context.Background(), in, 5)

	if res.Expansions < 1 || res.Expansions > MaxExpansions {
		t.Errorf("expansions = %d", res.Expansions)
	}
	if len(res.Products) != 5 {
		t.Errorf("len = %d", len(res.Products))
	}
	if res.Criteria.PriceMin != 9000 || res.Criteria.PriceMax != 9500 {
		t.Errorf("criteria changed: %s", res.Criteria)
	}
	if in.PriceMin != 9000 {
		t.Error("input mutated")
	}
	w := r.calls[1]
	if w.PriceMin != 8075 || w.PriceMax != 10425 {
		t.Errorf("first widening = [%g,%g]", w.PriceMin, w.PriceMax)
	}
	if w.Category != in.Category || w.TextSearch != in.TextSearch {
		t.Errorf("widened criteria changed other fields: %s", w)
	}
}

func TestRecommend_BoundedExpansion(t *testing.T) {
	r := &mockRetriever{catalog: []domprod.Product{phone("only", 9200)}, category: "Android Phones", searched: true}
	res := newService(r).Recommend(context.Background(), criteria.Criteria{
		Category: "Android Phones", PriceMin: 9000, PriceMax: 9500,
	}, 5)

	if res.Expansions != MaxExpansions {
		t.Errorf("expansions = %d", res.Expansions)
	}
	if len(r.calls) != 1+MaxExpansions {
		t.Fatalf("calls = %d", len(r.calls))
	}
	want := [][2]float64{{9000, 9500}, {8075, 10425}, {6687, 11813}, {4605, 13895}}
	for i, w := range want {
		if r.calls[i].PriceMin != w[0] || r.calls[i].PriceMax != w[1] {
			t.Errorf("call %d = [%g,%g], want %v", i, r.calls[i].PriceMin, r.calls[i].PriceMax, w)
		}
	}
	if len(res.Products) != 1 {
		t.Errorf("len = %d", len(res.Products))
	}
}

func TestRecommend_EmptyWideningKeepsBest(t *testing.T) {
	// Found inside the window, nothing else anywhere.
	catalog := []domprod.Product{phone("a", 9100), phone("b", 9200)}
	r := &mockRetriever{catalog: catalog, category: "Android Phones", searched: true}
	// Force empty reruns by dropping the catalog after the first call.
	s := newService(&dropAfterFirst{inner: r})
	res := s.Recommend(context.Background(), criteria.Criteria{
		Category: "Android Phones", PriceMin: 9000, PriceMax: 9500,
	}, 5)
	if len(res.Products) != 2 || res.Expansions != MaxExpansions {
		t.Errorf("len = %d, expansions = %d", len(res.Products), res.Expansions)
	}
}

type dropAfterFirst struct {
	inner *mockRetriever
	n     int
}

func (d *dropAfterFirst) Retrieve(ctx context.Context, c criteria.Criteria, limit int) retrieval.Result {
	d.n++
	res := d.inner.Retrieve(ctx, c, limit)
	if d.n > 1 {
		res.Products = nil
	}
	return res
}

func TestRecommend_NoExplicitWindowNoExpansion(t *testing.T) {
	r := &mockRetriever{catalog: []domprod.Product{phone("a", 500)}, category: "Android Phones", searched: true}
	res := newService(r).Recommend(context.Background(), criteria.Criteria{Category: "Android Phones"}, 5)
	if res.Expansions != 0 || len(r.calls) != 1 {
		t.Errorf("expansions = %d, calls = %d", res.Expansions, len(r.calls))
	}
	if len(res.Products) != 1 {
		t.Errorf("len = %d", len(res.Products))
	}
}

func TestRecommend_UnresolvedCategory(t *testing.T) {
	r := &mockRetriever{}
	res := newService(r).Recommend(context.Background(), criteria.Criteria{PriceMin: 100, PriceMax: 200}, 5)
	if res.Searched || len(res.Products) != 0 || res.Expansions != 0 {
		t.Errorf("res = %+v", res)
	}
	if len(r.calls) != 1 {
		t.Errorf("calls = %d", len(r.calls))
	}
}

func TestRecommend_ExactPriceIsNormalized(t *testing.T) {
	r := &mockRetriever{category: "Android Phones", searched: true}
	res := newService(r).Recommend(context.Background(), criteria.Criteria{
		Category: "Android Phones", PriceMin: 500, PriceMax: 500,
	}, 5)
	if r.calls[0].PriceMin != 400 || r.calls[0].PriceMax != 600 {
		t.Errorf("first call = %s", r.calls[0])
	}
	if res.Criteria.PriceMin != 400 {
		t.Errorf("criteria = %s", res.Criteria)
	}
}
