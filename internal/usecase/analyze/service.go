// Package analyze extracts search criteria from a natural-language prompt.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	"github.com/kailas-cloud/recodex/internal/domain/number"
	"github.com/kailas-cloud/recodex/internal/metrics"
	"github.com/kailas-cloud/recodex/internal/transport/openai"
)

// MaxPromptRunes bounds the accepted prompt length.
const MaxPromptRunes = 2000

// Source tells where the criteria came from.
type Source string

// Criteria sources.
const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// Analysis is the analyzer output. Raw is the map as produced by the model or
// the fallback; Criteria is its normalized form.
type Analysis struct {
	Raw      map[string]any
	Criteria criteria.Criteria
	Source   Source
}

// Service analyzes prompts. A nil completer means keyword fallback only.
type Service struct {
	llm    Completer
	mapper *Mapper
	logger *zap.Logger
}

// New creates an analyzer.
func New(llm Completer, mapper *Mapper, logger *zap.Logger) *Service {
	if mapper == nil {
		mapper = NewMapper(DefaultHints())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{llm: llm, mapper: mapper, logger: logger}
}

// Analyze returns criteria for prompt. It only fails on an empty or oversized
// prompt; model failures fall back to keyword mapping.
func (s *Service) Analyze(ctx context.Context, prompt string) (Analysis, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Analysis{}, fmt.Errorf("%w: empty", domain.ErrInvalidPrompt)
	}
	if utf8.RuneCountInString(prompt) > MaxPromptRunes {
		return Analysis{}, fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidPrompt, MaxPromptRunes)
	}

	if s.llm == nil {
		metrics.AnalyzerFallbacksTotal.WithLabelValues("no_llm").Inc()
		return s.fallback(prompt), nil
	}

	raw, err := s.ask(ctx, prompt)
	if err != nil {
		metrics.AnalyzerFallbacksTotal.WithLabelValues(fallbackReason(err)).Inc()
		s.logger.Warn("prompt analysis failed, using keyword fallback", zap.Error(err))
		return s.fallback(prompt), nil
	}

	if cat, _ := raw["category_search_string"].(string); strings.TrimSpace(cat) == "" {
		if guess := s.mapper.Map(prompt); guess != "" {
			metrics.AnalyzerFallbacksTotal.WithLabelValues("empty_category").Inc()
			raw["category_search_string"] = guess
		}
	}
	return Analysis{Raw: raw, Criteria: criteria.FromRaw(raw), Source: SourceLLM}, nil
}

func (s *Service) ask(ctx context.Context, prompt string) (map[string]any, error) {
	text, err := s.llm.Complete(ctx, openai.Request{
		Purpose: "analyze",
		System:  systemPrompt,
		User:    userPrompt(prompt),
		JSON:    true,
	})
	if err != nil {
		return nil, err
	}
	raw, err := ParseJSON(text)
	if err != nil {
		return nil, err
	}
	sanitize(raw)
	return raw, nil
}

// errMalformed marks a model answer that is not a JSON object.
var errMalformed = errors.New("malformed model output")

// ParseJSON decodes a model answer, tolerating markdown code fences and
// surrounding prose.
func ParseJSON(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	if i, j := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); i >= 0 && j > i {
		cleaned = cleaned[i : j+1]
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", errMalformed)
	}
	return raw, nil
}

// sanitize applies the price fixes: an inverted window drops its lower bound
// and a zero upper bound means no limit.
func sanitize(raw map[string]any) {
	lo := number.ParseFloat(raw["price_min"])
	hi := criteria.DefaultPriceCeiling
	if v, ok := raw["price_max"]; ok {
		hi = number.ParseFloat(v)
	}
	if lo > hi {
		raw["price_min"] = 0.0
	}
	if hi == 0 {
		raw["price_max"] = criteria.DefaultPriceCeiling
	}
}

// fallback uses the whole prompt as positive keywords.
func (s *Service) fallback(prompt string) Analysis {
	raw := map[string]any{
		"category_search_string": s.mapper.Map(prompt),
		"text_search":            prompt,
		"negative_text_search":   "",
		"price_min":              0.0,
		"price_max":              criteria.DefaultPriceCeiling,
		"min_rating":             0.0,
	}
	return Analysis{Raw: raw, Criteria: criteria.FromRaw(raw), Source: SourceFallback}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	default:
		return "llm_error"
	}
}
