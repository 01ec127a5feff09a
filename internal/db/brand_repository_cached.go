package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/cache"
	"github.com/prudhivi99/guitar-store/internal/metrics"
	"github.com/prudhivi99/guitar-store/internal/models"
)

// BrandStore is the uncached brand repository.
type BrandStore interface {
	List(ctx context.Context) ([]models.Brand, error)
	Paginate(ctx context.Context, p models.Page) ([]models.Brand, int, error)
	Get(ctx context.Context, id int) (*models.Brand, error)
	GetWithProducts(ctx context.Context, id int) (*models.Brand, error)
	Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error)
	Update(ctx context.Context, id int, req models.UpdateBrandRequest) (*models.Brand, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// CachedBrandRepository is a read-through cache in front of a BrandStore.
// Cache failures never fail a call; they only cost a trip to the store.
type CachedBrandRepository struct {
	repo    BrandStore
	cache   cache.Store
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewCachedBrandRepository(repo BrandStore, store cache.Store, m *metrics.Metrics, log *slog.Logger) *CachedBrandRepository {
	return &CachedBrandRepository{
		repo:    repo,
		cache:   store,
		metrics: m,
		log:     log,
	}
}

// Cache key helpers
func allBrandsKey() string {
	return "all_brands"
}

func brandKey(id int) string {
	return fmt.Sprintf("brand_%d", id)
}

func brandWithProductsKey(id int) string {
	return fmt.Sprintf("brand_with_products_%d", id)
}

func brandsPageKey(p models.Page) string {
	return fmt.Sprintf("brands_page_%d_limit_%d", p.Number, p.Limit)
}

type brandPage struct {
	Brands []models.Brand `json:"brands"`
	Total  int            `json:"total"`
}

// lookup reads key into dest and reports whether it was a hit.
func (r *CachedBrandRepository) lookup(ctx context.Context, key string, dest any) bool {
	err := r.cache.Get(ctx, key, dest)
	switch {
	case err == nil:
		r.log.Debug("cache hit", "key", key)
		r.metrics.CacheResult("hit")
		return true
	case errors.Is(err, cache.ErrMiss):
		r.log.Debug("cache miss", "key", key)
		r.metrics.CacheResult("miss")
	default:
		r.log.Warn("cache read failed", "key", key, "error", err)
		r.metrics.CacheResult("error")
	}
	return false
}

func (r *CachedBrandRepository) store(ctx context.Context, key string, value any) {
	if err := r.cache.Set(ctx, key, value); err != nil {
		r.log.Warn("cache write failed", "key", key, "error", err)
	}
}

// List returns all brands (with caching)
func (r *CachedBrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	if r.lookup(ctx, allBrandsKey(), &brands) {
		return brands, nil
	}

	brands, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, allBrandsKey(), brands)
	return brands, nil
}

// Paginate returns a page of brands. Page keys are never invalidated
// explicitly and go stale until their TTL runs out.
func (r *CachedBrandRepository) Paginate(ctx context.Context, p models.Page) ([]models.Brand, int, error) {
	key := brandsPageKey(p)
	var cached brandPage
	if r.lookup(ctx, key, &cached) {
		return cached.Brands, cached.Total, nil
	}

	brands, total, err := r.repo.Paginate(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	r.store(ctx, key, brandPage{Brands: brands, Total: total})
	return brands, total, nil
}

// Get returns a single brand (with caching)
func (r *CachedBrandRepository) Get(ctx context.Context, id int) (*models.Brand, error) {
	var b models.Brand
	if r.lookup(ctx, brandKey(id), &b) {
		return &b, nil
	}

	found, err := r.repo.Get(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	r.store(ctx, brandKey(id), found)
	return found, nil
}

func (r *CachedBrandRepository) GetWithProducts(ctx context.Context, id int) (*models.Brand, error) {
	var b models.Brand
	if r.lookup(ctx, brandWithProductsKey(id), &b) {
		return &b, nil
	}

	found, err := r.repo.GetWithProducts(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	r.store(ctx, brandWithProductsKey(id), found)
	return found, nil
}

// Create inserts a new brand and invalidates cache
func (r *CachedBrandRepository) Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error) {
	b, err := r.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	r.Invalidate(ctx, b.ID)
	return b, nil
}

func (r *CachedBrandRepository) Update(ctx context.Context, id int, req models.UpdateBrandRequest) (*models.Brand, error) {
	b, err := r.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if b != nil {
		r.Invalidate(ctx, id)
	}
	return b, nil
}

// Delete removes a brand and invalidates cache
func (r *CachedBrandRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := r.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		r.Invalidate(ctx, id)
	}
	return ok, nil
}

// Invalidate drops the list key and both record keys of brand id.
func (r *CachedBrandRepository) Invalidate(ctx context.Context, id int) {
	keys := []string{allBrandsKey(), brandKey(id), brandWithProductsKey(id)}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		r.log.Warn("cache invalidation failed", "keys", keys, "error", err)
		return
	}
	r.log.Debug("cache invalidated", "keys", keys)
}

// InvalidateAll drops every brand key, including page keys. It is used when
// the brand touched by a change is not known.
func (r *CachedBrandRepository) InvalidateAll(ctx context.Context) {
	if err := r.cache.Delete(ctx, allBrandsKey()); err != nil {
		r.log.Warn("cache invalidation failed", "key", allBrandsKey(), "error", err)
	}
	if err := r.cache.DeletePrefix(ctx, "brand"); err != nil {
		r.log.Warn("cache invalidation failed", "prefix", "brand", "error", err)
		return
	}
	r.log.Debug("brand cache flushed")
}
