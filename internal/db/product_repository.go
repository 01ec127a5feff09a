package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

// List returns all products
func (r *ProductRepository) List(ctx context.Context, inc models.Include) ([]models.Product, error) {
	ps, err := queryAll(ctx, r.db, scanProduct, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return ps, r.load(ctx, ps, inc)
}

func (r *ProductRepository) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]models.Product, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM products")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}
	ps, err := queryAll(ctx, r.db, scanProduct,
		"SELECT "+productColumns+" FROM products ORDER BY id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	return ps, total, r.load(ctx, ps, inc)
}

// ListByCategory returns the products of one category.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID int, inc models.Include) ([]models.Product, error) {
	ps, err := queryAll(ctx, r.db, scanProduct,
		"SELECT "+productColumns+" FROM products WHERE category_id = $1 ORDER BY id", categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return ps, r.load(ctx, ps, inc)
}

// Get returns a single product
func (r *ProductRepository) Get(ctx context.Context, id int, inc models.Include) (*models.Product, error) {
	p, err := queryOne(ctx, r.db, scanProduct, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	one := []models.Product{*p}
	if err := r.load(ctx, one, inc); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (sku, name, description, price, stock, image_url, category_id, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns

	var p models.Product
	err := scanProduct(r.db.QueryRowContext(ctx, query,
		req.SKU, req.Name, req.Description, req.Price, req.Stock, req.ImageURL, req.CategoryID, req.BrandID,
	), &p)
	if err != nil {
		return nil, wrapWrite("create product", err)
	}
	return &p, nil
}

func (r *ProductRepository) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	var u updateSet
	if req.SKU != nil {
		u.set("sku", *req.SKU)
	}
	if req.Name != nil {
		u.set("name", *req.Name)
	}
	if req.Description != nil {
		u.set("description", *req.Description)
	}
	if req.Price != nil {
		u.set("price", *req.Price)
	}
	if req.Stock != nil {
		u.set("stock", *req.Stock)
	}
	if req.ImageURL != nil {
		u.set("image_url", *req.ImageURL)
	}
	if req.CategoryID != nil {
		u.set("category_id", *req.CategoryID)
	}
	if req.BrandID != nil {
		u.set("brand_id", *req.BrandID)
	}
	if u.empty() {
		return r.Get(ctx, id, nil)
	}

	q, args := u.build("products", id)
	p, err := queryOne(ctx, r.db, scanProduct, q+" RETURNING "+productColumns, args...)
	if err != nil {
		return nil, wrapWrite("update product", err)
	}
	return p, nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := execAffected(ctx, r.db, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return ok, nil
}

func (r *ProductRepository) load(ctx context.Context, ps []models.Product, inc models.Include) error {
	if len(ps) == 0 || len(inc) == 0 {
		return nil
	}
	ids := make([]int, len(ps))
	brandIDs := make([]int, len(ps))
	categoryIDs := make([]int, len(ps))
	for i := range ps {
		ids[i] = ps[i].ID
		brandIDs[i] = ps[i].BrandID
		categoryIDs[i] = ps[i].CategoryID
	}

	if inc.Has(models.RelBrand) {
		brands, err := brandsByID(ctx, r.db, brandIDs)
		if err != nil {
			return err
		}
		for i := range ps {
			ps[i].Brand = brands[ps[i].BrandID]
		}
	}
	if inc.Has(models.RelCategory) {
		cats, err := categoriesByID(ctx, r.db, categoryIDs)
		if err != nil {
			return err
		}
		for i := range ps {
			ps[i].Category = cats[ps[i].CategoryID]
		}
	}
	if inc.Has(models.RelReviews) {
		reviews, err := reviewsByProduct(ctx, r.db, ids)
		if err != nil {
			return err
		}
		for i := range ps {
			ps[i].Reviews = reviews[ps[i].ID]
		}
	}
	if inc.Has(models.RelOrderItems) {
		items, err := orderItemsByProduct(ctx, r.db, ids)
		if err != nil {
			return err
		}
		for i := range ps {
			ps[i].OrderItems = items[ps[i].ID]
		}
	}
	return nil
}
