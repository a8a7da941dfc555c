package recodex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recodex/internal/db"
	dbRedis "github.com/kailas-cloud/recodex/internal/db/redis"
	"github.com/kailas-cloud/recodex/internal/domain"
	"github.com/kailas-cloud/recodex/internal/domain/criteria"
	productrepo "github.com/kailas-cloud/recodex/internal/repository/product"
	"github.com/kailas-cloud/recodex/internal/transport/openai"
	analyzeuc "github.com/kailas-cloud/recodex/internal/usecase/analyze"
	"github.com/kailas-cloud/recodex/internal/usecase/candidate"
	describeuc "github.com/kailas-cloud/recodex/internal/usecase/describe"
	"github.com/kailas-cloud/recodex/internal/usecase/query"
	recommenduc "github.com/kailas-cloud/recodex/internal/usecase/recommend"
	"github.com/kailas-cloud/recodex/internal/usecase/retrieval"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the recodex library entry point.
type Client struct {
	store     db.Store
	repo      *productrepo.Repo
	analyzer  *analyzeuc.Service
	recommend *recommenduc.Service
	describer *describeuc.Service
}

// New creates a recodex Client and connects to the catalog store.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("recodex: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.addrs,
		Password:   cfg.password,
		Standalone: cfg.standalone,
	})
	if err != nil {
		return nil, fmt.Errorf("recodex: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("recodex: database not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := domain.DefaultCatalogConfig().WithPrefix(cfg.keyPrefix)
	repo := productrepo.New(store, catalog, logger)

	breaker := productrepo.DefaultBreakerConfig()
	if cfg.queryTimeout > 0 {
		breaker.QueryTimeout = cfg.queryTimeout
	}
	guarded := productrepo.NewGuarded(repo, breaker, logger)

	// Pass nil interfaces, not typed nil pointers, when no LLM is configured.
	var analyzeLLM analyzeuc.Completer
	var describeLLM describeuc.Completer
	if cfg.llm != nil && cfg.llm.APIKey != "" {
		completer := openai.NewCompleter(&openai.Config{
			APIKey:      cfg.llm.APIKey,
			BaseURL:     cfg.llm.BaseURL,
			Model:       cfg.llm.Model,
			Temperature: cfg.llm.Temperature,
			Timeout:     cfg.llm.Timeout,
			Provider:    "openai",
			Logger:      logger,
		})
		analyzeLLM = completer
		if cfg.descriptions {
			describeLLM = completer
		}
	}

	retriever := retrieval.New(guarded, query.NewBuilder(query.DefaultRules(), logger), logger)
	filter := candidate.New(candidate.HeuristicScorer{}, logger)

	return &Client{
		store:    store,
		repo:     repo,
		analyzer: analyzeuc.New(analyzeLLM, nil, logger),
		recommend: recommenduc.New(retriever, filter, recommenduc.Config{
			TopN:           cfg.topN,
			CandidateLimit: cfg.candidateLimit,
		}, logger),
		describer: describeuc.New(describeLLM, describeuc.DefaultConcurrency, logger),
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Analyze extracts criteria from a natural-language prompt.
func (c *Client) Analyze(ctx context.Context, prompt string) (Criteria, error) {
	a, err := c.analyzer.Analyze(ctx, prompt)
	if err != nil {
		return Criteria{}, fmt.Errorf("analyze: %w", err)
	}
	return a.Criteria, nil
}

// Recommend analyzes prompt and returns up to topN recommendations
// (topN <= 0 uses the client default).
func (c *Client) Recommend(ctx context.Context, prompt string, topN int) (Recommendation, error) {
	crit, err := c.Analyze(ctx, prompt)
	if err != nil {
		return Recommendation{}, err
	}
	return c.render(ctx, prompt, c.recommend.Recommend(ctx, crit, topN)), nil
}

// RecommendCriteria runs the pipeline for explicit criteria, skipping prompt analysis.
func (c *Client) RecommendCriteria(ctx context.Context, crit Criteria, topN int) Recommendation {
	crit = criteria.Normalize(crit)
	return c.render(ctx, crit.Category, c.recommend.Recommend(ctx, crit, topN))
}

func (c *Client) render(ctx context.Context, prompt string, res recommenduc.Result) Recommendation {
	cards := c.describer.Cards(ctx, res.Products)
	return Recommendation{
		Criteria:   res.Criteria,
		Category:   res.Category,
		Priority:   string(res.Priority),
		Expansions: res.Expansions,
		Cards:      cards,
		Summary:    describeuc.Summary(prompt, res.Category, len(cards)),
	}
}

// EnsureIndex creates the product index unless it exists. Returns true if created.
func (c *Client) EnsureIndex(ctx context.Context) (bool, error) {
	created, err := c.repo.EnsureIndex(ctx)
	if err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	return created, nil
}

// DropIndex removes the product index, and the products too when deleteDocs is set.
func (c *Client) DropIndex(ctx context.Context, deleteDocs bool) error {
	if err := c.repo.DropIndex(ctx, deleteDocs); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Ingest stores products, assigning stable IDs to those without one.
// Invalid products are reported in IngestResult.Rejected and skipped.
func (c *Client) Ingest(ctx context.Context, products []Product) (IngestResult, error) {
	stored, rejected, err := c.repo.UpsertBatch(ctx, products)
	if err != nil {
		return IngestResult{Rejected: rejected}, fmt.Errorf("ingest: %w", err)
	}
	return IngestResult{Stored: stored, Rejected: rejected}, nil
}
