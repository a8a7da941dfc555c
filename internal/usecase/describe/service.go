// Package describe turns ranked candidates into display cards.
package describe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/transport/openai"
)

// DefaultConcurrency bounds parallel description requests.
const DefaultConcurrency = 4

const (
	maxFeatures = 5
	maxReviews  = 2
	maxTokens   = 400
)

// Card is the display form of a recommended product.
type Card struct {
	ID          string  `json:"id,omitempty"`
	Image       string  `json:"image,omitempty"`
	Title       string  `json:"title"`
	Brand       string  `json:"brand,omitempty"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
	Price       float64 `json:"price"`
	Link        string  `json:"link,omitempty"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Service builds cards. A nil completer means title-only descriptions.
type Service struct {
	llm         Completer
	concurrency int
	logger      *zap.Logger
}

// New creates a describer.
func New(llm Completer, concurrency int, logger *zap.Logger) *Service {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{llm: llm, concurrency: concurrency, logger: logger}
}

// Cards converts candidates in order. Description failures fall back to the title.
func (s *Service) Cards(ctx context.Context, cs []domprod.Candidate) []Card {
	cards := make([]Card, len(cs))
	for i := range cs {
		cards[i] = ToCard(&cs[i])
	}
	if s.llm == nil || len(cs) == 0 {
		return cards
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range cs {
		g.Go(func() error {
			text, err := s.llm.Complete(gctx, openai.Request{
				Purpose:   "describe",
				System:    descriptionSystem,
				User:      productContext(&cs[i].Product),
				MaxTokens: maxTokens,
			})
			if err != nil {
				s.logger.Warn("description failed", zap.String("id", cs[i].ID), zap.Error(err))
				return nil
			}
			cards[i].Description = text
			return nil
		})
	}
	_ = g.Wait()
	return cards
}

// ToCard flattens a candidate. The description defaults to the title.
func ToCard(c *domprod.Candidate) Card {
	card := Card{
		ID:          c.ID,
		Title:       c.Title,
		Brand:       c.Brand,
		Rating:      c.EffectiveRating(),
		RatingCount: c.EffectiveReviewCount(),
		Price:       c.CurrentPrice(),
		Link:        c.URL,
		Description: c.Title,
		Score:       c.HybridScore,
	}
	if len(c.Images) > 0 {
		card.Image = c.Images[0]
	}
	return card
}

// Summary is the one-line recommendation text.
func Summary(prompt, category string, n int) string {
	if n == 0 {
		if category == "" {
			return fmt.Sprintf("No matching category was found for '%s'.", prompt)
		}
		return fmt.Sprintf("No suitable products were found for '%s' in the '%s' category.", prompt, category)
	}
	return fmt.Sprintf("Found the %d best %s matches for '%s'.", n, strings.ToLower(category), prompt)
}

const descriptionSystem = `You are a product advisor for an online shop. Describe the product in
4-5 plain sentences in one paragraph, using only the data provided. Start with
a data-driven sentence, give at most three concrete reasons, mention a
limitation if the data shows one, never quote reviews directly, never suggest
alternatives, and do not use headings, bullet points, emoji or exclamation marks.`

func productContext(p *domprod.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n", p.Title)
	if p.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	}
	if price := p.CurrentPrice(); price > 0 {
		fmt.Fprintf(&b, "Price: %s\n", strconv.FormatFloat(price, 'f', -1, 64))
	}
	fmt.Fprintf(&b, "Rating: %s / 5 (%d reviews)\n",
		strconv.FormatFloat(p.EffectiveRating(), 'f', 1, 64), p.EffectiveReviewCount())

	if keys := p.Features.Keys(); len(keys) > 0 {
		b.WriteString("Highlights:\n")
		for _, k := range keys[:min(maxFeatures, len(keys))] {
			fmt.Fprintf(&b, "- %s: %s\n", k, p.Features[k])
		}
	}
	if len(p.Reviews) > 0 {
		b.WriteString("Review excerpts:\n")
		for _, r := range p.Reviews[:min(maxReviews, len(p.Reviews))] {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}
