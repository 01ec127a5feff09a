package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(database *PostgresDB) *CategoryRepository {
	return &CategoryRepository{db: database.Conn}
}

func (r *CategoryRepository) List(ctx context.Context, inc models.Include) ([]models.Category, error) {
	cs, err := queryAll(ctx, r.db, scanCategory, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	return cs, r.load(ctx, cs, inc)
}

func (r *CategoryRepository) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]models.Category, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM categories")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}
	cs, err := queryAll(ctx, r.db, scanCategory,
		"SELECT "+categoryColumns+" FROM categories ORDER BY id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query categories: %w", err)
	}
	return cs, total, r.load(ctx, cs, inc)
}

func (r *CategoryRepository) Get(ctx context.Context, id int, inc models.Include) (*models.Category, error) {
	c, err := queryOne(ctx, r.db, scanCategory, "SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if c == nil {
		return nil, nil
	}
	one := []models.Category{*c}
	if err := r.load(ctx, one, inc); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *CategoryRepository) Create(ctx context.Context, req models.CreateCategoryRequest) (*models.Category, error) {
	var c models.Category
	err := scanCategory(r.db.QueryRowContext(ctx,
		"INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING "+categoryColumns,
		req.Name, req.Description), &c)
	if err != nil {
		return nil, wrapWrite("create category", err)
	}
	return &c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int, req models.UpdateCategoryRequest) (*models.Category, error) {
	var u updateSet
	if req.Name != nil {
		u.set("name", *req.Name)
	}
	if req.Description != nil {
		u.set("description", *req.Description)
	}
	if u.empty() {
		return r.Get(ctx, id, nil)
	}

	q, args := u.build("categories", id)
	c, err := queryOne(ctx, r.db, scanCategory, q+" RETURNING "+categoryColumns, args...)
	if err != nil {
		return nil, wrapWrite("update category", err)
	}
	return c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := execAffected(ctx, r.db, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete category: %w", err)
	}
	return ok, nil
}

func (r *CategoryRepository) load(ctx context.Context, cs []models.Category, inc models.Include) error {
	if !inc.Has(models.RelProducts) || len(cs) == 0 {
		return nil
	}
	ids := make([]int, len(cs))
	for i := range cs {
		ids[i] = cs[i].ID
	}
	products, err := productsByCategory(ctx, r.db, ids)
	if err != nil {
		return err
	}
	for i := range cs {
		cs[i].Products = products[cs[i].ID]
	}
	return nil
}
