package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain"
	domprod "github.com/kailas-cloud/recodex/internal/domain/product"
	"github.com/kailas-cloud/recodex/internal/domain/search/filter"
	"github.com/kailas-cloud/recodex/internal/domain/search/query"
)

// store is the consumer interface for the product catalog (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Search(ctx context.Context, q *db.Query) (*db.SearchResult, error)
	Count(ctx context.Context, index string, filters filter.Expression) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements retrieval.Repository and the catalog maintenance operations.
type Repo struct {
	store   store
	catalog domain.CatalogConfig
	counts  singleflight.Group
	logger  *zap.Logger
}

// New creates a product repository.
func New(s store, catalog domain.CatalogConfig, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog.IndexName == "" {
		catalog = domain.DefaultCatalogConfig().WithPrefix(catalog.KeyPrefix)
	}
	return &Repo{store: s, catalog: catalog, logger: logger}
}

// Find returns up to limit products matching q. Undecodable documents are skipped.
func (r *Repo) Find(ctx context.Context, q query.Query, limit int) ([]domprod.Product, error) {
	expr, err := q.Expression()
	if err != nil {
		return nil, fmt.Errorf("build filter: %w", err)
	}

	result, err := r.store.Search(ctx, &db.Query{
		IndexName:    r.catalog.IndexName,
		Filters:      expr,
		Limit:        limit,
		ReturnFields: []string{"$"},
	})
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	if result == nil || len(result.Entries) == 0 {
		return nil, nil
	}

	products := make([]domprod.Product, 0, len(result.Entries))
	for _, entry := range result.Entries {
		raw := entry.Fields["$"]
		if raw == "" {
			continue
		}
		p, err := decodeDoc(raw)
		if err != nil {
			r.logger.Warn("skipping undecodable product", zap.String("key", entry.Key), zap.Error(err))
			continue
		}
		if p.ID == "" {
			p.ID = strings.TrimPrefix(entry.Key, r.catalog.ProductKeyPrefix())
		}
		products = append(products, p)
	}
	return products, nil
}

// CountCategory returns how many products carry category as an exact tag.
// Concurrent calls for the same category share one store round-trip.
func (r *Repo) CountCategory(ctx context.Context, category string) (int, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return 0, nil
	}
	cond, err := filter.NewMatch(query.FieldCategories, category)
	if err != nil {
		return 0, fmt.Errorf("build filter: %w", err)
	}
	expr, err := filter.NewExpression([]filter.Condition{cond}, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("build filter: %w", err)
	}

	v, err, _ := r.counts.Do(strings.ToLower(category), func() (any, error) {
		return r.store.Count(ctx, r.catalog.IndexName, expr)
	})
	if err != nil {
		return 0, fmt.Errorf("count category %q: %w", category, err)
	}
	n, _ := v.(int)
	return n, nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id string) (domprod.Product, error) {
	key := r.catalog.ProductKey(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domprod.Product{}, domain.ErrProductNotFound
		}
		return domprod.Product{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	p, err := decodeDoc(string(raw))
	if err != nil {
		return domprod.Product{}, err
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// Upsert stores a product, assigning a stable ID when missing. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, p *domprod.Product) (bool, error) {
	if p.ID == "" {
		p.ID = StableID(p)
	}
	if err := validate(p); err != nil {
		return false, err
	}
	data, err := encodeDoc(p)
	if err != nil {
		return false, err
	}

	key := r.catalog.ProductKey(p.ID)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return false, fmt.Errorf("json.set %s: %w", key, err)
	}
	return !exists, nil
}

// UpsertBatch stores products in one pipelined round-trip. Invalid products are
// reported in the returned slice and skipped; the error covers the store call only.
func (r *Repo) UpsertBatch(ctx context.Context, products []domprod.Product) (int, []error, error) {
	items := make([]db.JSONSetItem, 0, len(products))
	var rejected []error
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = StableID(p)
		}
		if err := validate(p); err != nil {
			rejected = append(rejected, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		data, err := encodeDoc(p)
		if err != nil {
			rejected = append(rejected, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		items = append(items, db.JSONSetItem{Key: r.catalog.ProductKey(p.ID), Path: "$", Data: data})
	}
	if len(items) == 0 {
		return 0, rejected, nil
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return 0, rejected, fmt.Errorf("json.set batch of %d: %w", len(items), err)
	}
	return len(items), rejected, nil
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := r.catalog.ProductKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// EnsureIndex creates the product index unless it exists. Returns true if created.
func (r *Repo) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.catalog.IndexName)
	if err != nil {
		return false, fmt.Errorf("check index %s: %w", r.catalog.IndexName, err)
	}
	if exists {
		return false, nil
	}
	if err := r.store.CreateIndex(ctx, Index(r.catalog)); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("create index %s: %w", r.catalog.IndexName, err)
	}
	r.logger.Info("product index created", zap.String("index", r.catalog.IndexName))
	return true, nil
}

// DropIndex removes the product index, optionally with every indexed product.
func (r *Repo) DropIndex(ctx context.Context, deleteDocs bool) error {
	if err := r.store.DropIndex(ctx, r.catalog.IndexName, deleteDocs); err != nil {
		return fmt.Errorf("drop index %s: %w", r.catalog.IndexName, err)
	}
	return nil
}

// Catalog returns the storage layout the repository writes to.
func (r *Repo) Catalog() domain.CatalogConfig { return r.catalog }
