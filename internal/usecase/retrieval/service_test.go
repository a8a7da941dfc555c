package retrieval

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
	qb "github.com/kailas-cloud/recodex/internal/usecase/query"
)

// --- Mocks ---

type mockRepo struct {
	count    int
	countErr error
	// results keyed by attempt index; missing entries return nothing.
	results map[int][]domprod.Product
	errs    map[int]error

	countCalls int
	queries    []query.Query
	limits     []int
}

func (m *mockRepo) Find(_ context.Context, q query.Query, limit int) ([]domprod.Product, error) {
	i := len(m.queries)
	m.queries = append(m.queries, q)
	m.limits = append(m.limits, limit)
	if err := m.errs[i]; err != nil {
		return nil, err
	}
	return m.results[i], nil
}

func (m *mockRepo) CountCategory(_ context.Context, _ string) (int, error) {
	m.countCalls++
	return m.count, m.countErr
}

func newService(repo *mockRepo) *Service {
	return New(repo, qb.NewBuilder(qb.DefaultRules(), nil), nil)
}

func vacuumCriteria() criteria.Criteria {
	return criteria.Normalize(criteria.Criteria{
		Category:   "Bagless Vacuum",
		TextSearch: "cordless",
		PriceMin:   100,
		PriceMax:   300,
		MinRating:  4,
	})
}

func products(ids ...string) []domprod.Product {
	out := make([]domprod.Product, len(ids))
	for i, id := range ids {
		out[i] = domprod.Product{ID: id, Title: id}
	}
	return out
}

// --- Tests ---

func TestRetrieve_EmptyCategoryShortCircuits(t *testing.T) {
	repo := &mockRepo{count: 10}
	res := newService(repo).Retrieve(context.Background(), criteria.Criteria{TextSearch: "anything"}, 0)

	if res.Searched || len(res.Products) != 0 || res.Category != "" {
		t.Errorf("result = %+v", res)
	}
	if repo.countCalls != 0 || len(repo.queries) != 0 {
		t.Errorf("store called: count=%d find=%d", repo.countCalls, len(repo.queries))
	}
}

func TestRetrieve_UnknownCategory(t *testing.T) {
	repo := &mockRepo{count: 0}
	res := newService(repo).Retrieve(context.Background(), vacuumCriteria(), 0)

	if res.Searched || res.Category != "Bagless Vacuum" {
		t.Errorf("result = %+v", res)
	}
	if len(repo.queries) != 0 {
		t.Errorf("find called %d times", len(repo.queries))
	}
}

func TestRetrieve_CountErrorIsEmpty(t *testing.T) {
	repo := &mockRepo{countErr: errors.New("down")}
	res := newService(repo).Retrieve(context.Background(), vacuumCriteria(), 0)
	if res.Searched || len(res.Products) != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestRetrieve_FirstNonEmptyWins(t *testing.T) {
	repo := &mockRepo{
		count:   5,
		results: map[int][]domprod.Product{1: products("a", "b"), 2: products("c")},
	}
	res := newService(repo).Retrieve(context.Background(), vacuumCriteria(), 0)

	if res.Stage != StageRelaxed {
		t.Errorf("stage = %q", res.Stage)
	}
	if len(res.Products) != 2 || res.Products[0].ID != "a" {
		t.Errorf("products = %+v", res.Products)
	}
	if len(repo.queries) != 2 {
		t.Errorf("find calls = %d, want 2", len(repo.queries))
	}
	if repo.limits[0] != DefaultLimit {
		t.Errorf("limit = %d", repo.limits[0])
	}
}

func TestRetrieve_CategoryLockedAcrossAllAttempts(t *testing.T) {
	repo := &mockRepo{count: 5}
	res := newService(repo).Retrieve(context.Background(), vacuumCriteria(), 50)

	if !res.Searched || len(res.Products) != 0 {
		t.Errorf("result = %+v", res)
	}
	// exact, relaxed, contains:Bagless, contains:Vacuum, text, loose
	if len(repo.queries) != 6 {
		t.Fatalf("find calls = %d, want 6", len(repo.queries))
	}
	for i, q := range repo.queries {
		if q.Category == "" {
			t.Errorf("attempt %d has no category: %s", i, q)
		}
		expr, err := q.Expression()
		if err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
		found := false
		for _, cond := range expr.Must() {
			if cond.Key() == query.FieldCategories {
				found = true
			}
		}
		if !found {
			t.Errorf("attempt %d lowers without category: %s", i, q)
		}
		if repo.limits[i] != 50 {
			t.Errorf("attempt %d limit = %d", i, repo.limits[i])
		}
	}
}

func TestRetrieve_SkipsFailingAttempts(t *testing.T) {
	repo := &mockRepo{
		count:   5,
		errs:    map[int]error{0: errors.New("timeout"), 1: errors.New("breaker open")},
		results: map[int][]domprod.Product{2: products("x")},
	}
	res := newService(repo).Retrieve(context.Background(), vacuumCriteria(), 0)

	if res.Stage != "contains:Bagless" {
		t.Errorf("stage = %q", res.Stage)
	}
	if len(res.Products) != 1 {
		t.Errorf("products = %+v", res.Products)
	}
}

func TestRetrieve_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := &mockRepo{count: 5}
	res := newService(repo).Retrieve(ctx, vacuumCriteria(), 0)
	if len(repo.queries) != 0 || len(res.Products) != 0 {
		t.Errorf("queries = %d", len(repo.queries))
	}
}

func TestAttempts(t *testing.T) {
	c := vacuumCriteria()
	base, cat := qb.NewBuilder(qb.DefaultRules(), nil).Build(c)
	got := Attempts(base, cat, c)

	stages := make([]string, len(got))
	for i, a := range got {
		stages[i] = a.Stage
	}
	want := "exact,relaxed,contains:Bagless,contains:Vacuum,text,loose"
	if strings.Join(stages, ",") != want {
		t.Fatalf("stages = %v", stages)
	}

	exact := got[0].Query
	if exact.CategoryMatch != query.Exact || exact.PriceMin != 100 || exact.MinRating != 4 || exact.TextSearch != "" {
		t.Errorf("exact = %s", exact)
	}

	relaxed := got[1].Query
	if relaxed.PriceMin != 0 || !math.IsInf(relaxed.PriceMax, 1) || relaxed.MinRating != 0 || relaxed.MinReviews != 0 {
		t.Errorf("relaxed = %s", relaxed)
	}

	contains := got[2].Query
	if contains.CategoryMatch != query.Contains || contains.Category != "Bagless" || contains.MinReviews != 1 {
		t.Errorf("contains = %s", contains)
	}

	text := got[4].Query
	if text.TextSearch != "cordless" || text.Category != cat || text.CategoryMatch != query.Exact {
		t.Errorf("text = %s", text)
	}

	loose := got[5].Query
	if loose.PriceMin != 100 || loose.PriceMax != 300 || loose.MinRating != 4 || loose.MinReviews != 0 {
		t.Errorf("loose = %s", loose)
	}
}

func TestAttempts_NoTextNoShortWords(t *testing.T) {
	c := criteria.Normalize(criteria.Criteria{Category: "Tv"})
	base, cat := qb.NewBuilder(qb.DefaultRules(), nil).Build(c)
	got := Attempts(base, cat, c)
	if len(got) != 3 {
		t.Errorf("attempts = %+v", got)
	}
}
