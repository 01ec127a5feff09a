package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type BrandRepository struct {
	db *sql.DB
}

func NewBrandRepository(database *PostgresDB) *BrandRepository {
	return &BrandRepository{db: database.Conn}
}

// List returns all brands with their products.
func (r *BrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	brands, err := queryAll(ctx, r.db, scanBrand, "SELECT "+brandColumns+" FROM brands ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query brands: %w", err)
	}
	if err := r.attachProducts(ctx, brands); err != nil {
		return nil, err
	}
	return brands, nil
}

// Paginate returns one page of brands with their products and the total count.
func (r *BrandRepository) Paginate(ctx context.Context, p models.Page) ([]models.Brand, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM brands")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count brands: %w", err)
	}
	brands, err := queryAll(ctx, r.db, scanBrand,
		"SELECT "+brandColumns+" FROM brands ORDER BY id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query brands: %w", err)
	}
	if err := r.attachProducts(ctx, brands); err != nil {
		return nil, 0, err
	}
	return brands, total, nil
}

// Get returns a brand without associations.
func (r *BrandRepository) Get(ctx context.Context, id int) (*models.Brand, error) {
	b, err := queryOne(ctx, r.db, scanBrand, "SELECT "+brandColumns+" FROM brands WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get brand: %w", err)
	}
	return b, nil
}

// GetWithProducts returns a brand and its products.
func (r *BrandRepository) GetWithProducts(ctx context.Context, id int) (*models.Brand, error) {
	b, err := r.Get(ctx, id)
	if err != nil || b == nil {
		return b, err
	}
	one := []models.Brand{*b}
	if err := r.attachProducts(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *BrandRepository) Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error) {
	var b models.Brand
	err := scanBrand(r.db.QueryRowContext(ctx,
		"INSERT INTO brands (name, logo_url) VALUES ($1, $2) RETURNING "+brandColumns,
		req.Name, req.LogoURL), &b)
	if err != nil {
		return nil, wrapWrite("create brand", err)
	}
	return &b, nil
}

// Update applies the non-nil fields of req. A missing brand yields (nil, nil).
func (r *BrandRepository) Update(ctx context.Context, id int, req models.UpdateBrandRequest) (*models.Brand, error) {
	var u updateSet
	if req.Name != nil {
		u.set("name", *req.Name)
	}
	if req.LogoURL != nil {
		u.set("logo_url", *req.LogoURL)
	}
	if u.empty() {
		return r.Get(ctx, id)
	}

	q, args := u.build("brands", id)
	b, err := queryOne(ctx, r.db, scanBrand, q+" RETURNING "+brandColumns, args...)
	if err != nil {
		return nil, wrapWrite("update brand", err)
	}
	return b, nil
}

// Delete removes a brand; its products go with it.
func (r *BrandRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := execAffected(ctx, r.db, "DELETE FROM brands WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete brand: %w", err)
	}
	return ok, nil
}

func (r *BrandRepository) attachProducts(ctx context.Context, brands []models.Brand) error {
	ids := make([]int, len(brands))
	for i := range brands {
		ids[i] = brands[i].ID
	}
	products, err := productsByBrand(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for i := range brands {
		brands[i].Products = products[brands[i].ID]
	}
	return nil
}
