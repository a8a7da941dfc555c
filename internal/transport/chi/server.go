// Package chi serves the recommendation HTTP API.
package chi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	logpkg "github.com/kailas-cloud/recodex/internal/logger"
	"github.com/kailas-cloud/recodex/internal/metrics"
	analyzeuc "github.com/kailas-cloud/recodex/internal/usecase/analyze"
	describeuc "github.com/kailas-cloud/recodex/internal/usecase/describe"
	healthuc "github.com/kailas-cloud/recodex/internal/usecase/health"
	recommenduc "github.com/kailas-cloud/recodex/internal/usecase/recommend"
)

const maxBodyBytes = 64 << 10

// Analyzer extracts criteria from a prompt.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (analyzeuc.Analysis, error)
}

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, c criteria.Criteria, topN int) recommenduc.Result
}

// CardBuilder renders ranked candidates.
type CardBuilder interface {
	Cards(ctx context.Context, cs []domprod.Candidate) []describeuc.Card
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options configures the router.
type Options struct {
	APIKeys   []string
	RateLimit RateLimitConfig
}

// Server holds the HTTP handlers.
type Server struct {
	analyzer    Analyzer
	recommender Recommender
	cards       CardBuilder
	health      HealthChecker
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	analyzer Analyzer,
	recommender Recommender,
	cards CardBuilder,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Server{
		analyzer:    analyzer,
		recommender: recommender,
		cards:       cards,
		health:      health,
		validate:    v,
		logger:      logger,
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEvent(s.logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Group(func(r chi.Router) {
		r.Use(RateLimit(opts.RateLimit))
		r.Post("/analyze-prompt", s.AnalyzePrompt)
		r.Post("/recommendation", s.Recommendation)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

type analyzeRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
}

type analyzeResponse struct {
	criteria.Criteria
	Source analyzeuc.Source `json:"source"`
}

type recommendationRequest struct {
	Prompt string `json:"prompt" validate:"required,max=2000"`
	TopN   int    `json:"top_n" validate:"omitempty,min=1,max=20"`
	// Criteria skips prompt analysis when set.
	Criteria *criteria.Criteria `json:"criteria,omitempty"`
}

type recommendationResponse struct {
	Criteria       criteria.Criteria `json:"criteria"`
	Category       string            `json:"category"`
	Priority       string            `json:"priority"`
	Expansions     int               `json:"expansions"`
	Cards          []describeuc.Card `json:"cards"`
	Recommendation string            `json:"recommendation"`
}

// AnalyzePrompt handles POST /analyze-prompt.
func (s *Server) AnalyzePrompt(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	a, err := s.analyzer.Analyze(r.Context(), req.Prompt)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Criteria: a.Criteria, Source: a.Source})
}

// Recommendation handles POST /recommendation: analyze, recommend, render.
func (s *Server) Recommendation(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if !s.decode(w, r, &req) {
		return
	}

	var c criteria.Criteria
	if req.Criteria != nil {
		c = criteria.Normalize(*req.Criteria)
	} else {
		a, err := s.analyzer.Analyze(r.Context(), req.Prompt)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		c = a.Criteria
	}

	ctx := logpkg.With(r.Context(), zap.String("category", c.Category))
	res := s.recommender.Recommend(ctx, c, req.TopN)
	cards := s.cards.Cards(ctx, res.Products)
	if cards == nil {
		cards = []describeuc.Card{}
	}
	logpkg.FromContext(ctx).Info("recommendation served",
		zap.String("priority", string(res.Priority)),
		zap.Int("cards", len(cards)),
		zap.Int("expansions", res.Expansions),
	)

	writeJSON(w, http.StatusOK, recommendationResponse{
		Criteria:       res.Criteria,
		Category:       res.Category,
		Priority:       string(res.Priority),
		Expansions:     res.Expansions,
		Cards:          cards,
		Recommendation: describeuc.Summary(req.Prompt, res.Category, len(cards)),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid field: "+verrs[0].Field())
			return false
		}
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request")
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
