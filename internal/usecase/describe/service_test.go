package describe

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/transport/openai"
)

// --- Mocks ---

type mockCompleter struct {
	mu    sync.Mutex
	fail  map[string]bool
	users []string
}

func (m *mockCompleter) Complete(_ context.Context, r openai.Request) (string, error) {
	m.mu.Lock()
	m.users = append(m.users, r.User)
	m.mu.Unlock()
	for title := range m.fail {
		if strings.Contains(r.User, title) {
			return "", errors.New("provider down")
		}
	}
	first := strings.SplitN(r.User, "\n", 2)[0]
	return "About " + strings.TrimPrefix(first, "Product: "), nil
}

func candidates() []domprod.Candidate {
	a := domprod.Product{
		ID:          "a",
		Title:       "Quiet Vacuum",
		Brand:       "Acme",
		Price:       domprod.Price{Current: 249.9},
		Rating:      4.6,
		RatingCount: 0,
		Reviews:     domprod.TextList{"great", "ok", "loud"},
		Features:    domprod.Features{"Bag": "None", "Type": "Cordless"},
		Images:      domprod.TextList{"https://img/1.jpg", "https://img/2.jpg"},
		URL:         "https://shop/a",
	}
	b := domprod.Product{ID: "b", Title: "Loud Vacuum", Rating: 3, RatingCount: 12}
	ca := domprod.NewCandidate(&a, 9.2)
	ca.HybridScore = 12.5
	return []domprod.Candidate{ca, domprod.NewCandidate(&b, 6)}
}

// --- Tests ---

func TestToCard(t *testing.T) {
	cs := candidates()
	card := ToCard(&cs[0])
	want := Card{
		ID:          "a",
		Image:       "https://img/1.jpg",
		Title:       "Quiet Vacuum",
		Brand:       "Acme",
		Rating:      4.6,
		RatingCount: 3,
		Price:       249.9,
		Link:        "https://shop/a",
		Description: "Quiet Vacuum",
		Score:       12.5,
	}
	if card != want {
		t.Errorf("card = %+v", card)
	}
}

func TestCards_NoLLMUsesTitles(t *testing.T) {
	cards := New(nil, 0, nil).Cards(context.Background(), candidates())
	if len(cards) != 2 || cards[1].Description != "Loud Vacuum" {
		t.Errorf("cards = %+v", cards)
	}
}

func TestCards_Descriptions(t *testing.T) {
	llm := &mockCompleter{fail: map[string]bool{"Loud Vacuum": true}}
	cards := New(llm, 2, nil).Cards(context.Background(), candidates())

	if cards[0].Description != "About Quiet Vacuum" {
		t.Errorf("first description = %q", cards[0].Description)
	}
	if cards[1].Description != "Loud Vacuum" {
		t.Errorf("failed description should fall back to title, got %q", cards[1].Description)
	}
	if len(llm.users) != 2 {
		t.Errorf("calls = %d", len(llm.users))
	}
}

func TestCards_Empty(t *testing.T) {
	if cards := New(&mockCompleter{}, 0, nil).Cards(context.Background(), nil); len(cards) != 0 {
		t.Errorf("cards = %v", cards)
	}
}

func TestProductContext(t *testing.T) {
	cs := candidates()
	got := productContext(&cs[0].Product)
	for _, want := range []string{
		"Product: Quiet Vacuum\n",
		"Price: 249.9\n",
		"Rating: 4.6 / 5 (3 reviews)\n",
		"- Bag: None\n",
		"- great\n- ok\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "loud") {
		t.Error("context includes more than two reviews")
	}
}

func TestSummary(t *testing.T) {
	if got := Summary("quiet vacuum", "Bagless Vacuum", 3); got != "Found the 3 best bagless vacuum matches for 'quiet vacuum'." {
		t.Errorf("Summary = %q", got)
	}
	if got := Summary("x", "", 0); !strings.Contains(got, "No matching category") {
		t.Errorf("Summary = %q", got)
	}
	if got := Summary("x", "Laptop", 0); !strings.Contains(got, "'Laptop'") {
		t.Errorf("Summary = %q", got)
	}
}
