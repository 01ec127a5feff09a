package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/prudhivi99/guitar-store/internal/models"
)

// Column lists and scanners shared by the repositories. Relation loaders
// below fetch associations for a whole result set in one query per
// relation.

const (
	brandColumns     = "id, name, logo_url"
	categoryColumns  = "id, name, description"
	productColumns   = "id, sku, name, description, price, stock, image_url, category_id, brand_id"
	orderColumns     = "id, total, status, created_at, user_id"
	orderItemColumns = "id, quantity, price, order_id, product_id"
	reviewColumns    = "id, rating, comment, created_at, user_id, product_id"
	userColumns      = "u.id, u.firebase_uid, u.email, u.password, u.profile_id, u.role_id, r.name"
	userFrom         = "users u JOIN roles r ON r.id = u.role_id"
)

func scanBrand(s scanner, b *models.Brand) error {
	return s.Scan(&b.ID, &b.Name, &b.LogoURL)
}

func scanCategory(s scanner, c *models.Category) error {
	return s.Scan(&c.ID, &c.Name, &c.Description)
}

func scanProduct(s scanner, p *models.Product) error {
	return s.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Stock, &p.ImageURL, &p.CategoryID, &p.BrandID)
}

func scanOrder(s scanner, o *models.Order) error {
	return s.Scan(&o.ID, &o.Total, &o.Status, &o.CreatedAt, &o.UserID)
}

func scanOrderItem(s scanner, i *models.OrderItem) error {
	return s.Scan(&i.ID, &i.Quantity, &i.Price, &i.OrderID, &i.ProductID)
}

func scanReview(s scanner, r *models.Review) error {
	return s.Scan(&r.ID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UserID, &r.ProductID)
}

// scanUser fills the role from the joined roles row.
func scanUser(s scanner, u *models.User) error {
	role := &models.Role{}
	if err := s.Scan(&u.ID, &u.FirebaseUID, &u.Email, &u.Password, &u.ProfileID, &u.RoleID, &role.Name); err != nil {
		return err
	}
	role.ID = u.RoleID
	u.Role = role
	return nil
}

func scanProfile(s scanner, p *models.Profile) error {
	return s.Scan(&p.ID, &p.FirstName, &p.LastName)
}

// byID fetches rows of one table whose id is in ids, keyed by id.
func byID[T any](ctx context.Context, conn *sql.DB, table, columns string, scan func(scanner, *T) error, idOf func(*T) int, ids []int) (map[int]*T, error) {
	out := make(map[int]*T)
	ids = uniqueInts(ids)
	if len(ids) == 0 {
		return out, nil
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = ANY($1)", columns, table)
	rows, err := queryAll(ctx, conn, scan, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	for i := range rows {
		out[idOf(&rows[i])] = &rows[i]
	}
	return out, nil
}

// byParent fetches child rows whose fk column is in ids, grouped by fk.
func byParent[T any](ctx context.Context, conn *sql.DB, table, columns, fk string, scan func(scanner, *T) error, fkOf func(*T) int, ids []int) (map[int][]T, error) {
	out := make(map[int][]T)
	ids = uniqueInts(ids)
	if len(ids) == 0 {
		return out, nil
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY id", columns, table, fk)
	rows, err := queryAll(ctx, conn, scan, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	for _, r := range rows {
		k := fkOf(&r)
		out[k] = append(out[k], r)
	}
	return out, nil
}

func productsByBrand(ctx context.Context, conn *sql.DB, ids []int) (map[int][]models.Product, error) {
	return byParent(ctx, conn, "products", productColumns, "brand_id", scanProduct,
		func(p *models.Product) int { return p.BrandID }, ids)
}

func productsByCategory(ctx context.Context, conn *sql.DB, ids []int) (map[int][]models.Product, error) {
	return byParent(ctx, conn, "products", productColumns, "category_id", scanProduct,
		func(p *models.Product) int { return p.CategoryID }, ids)
}

func reviewsByProduct(ctx context.Context, conn *sql.DB, ids []int) (map[int][]models.Review, error) {
	return byParent(ctx, conn, "reviews", reviewColumns, "product_id", scanReview,
		func(r *models.Review) int { return r.ProductID }, ids)
}

func orderItemsByProduct(ctx context.Context, conn *sql.DB, ids []int) (map[int][]models.OrderItem, error) {
	return byParent(ctx, conn, "order_items", orderItemColumns, "product_id", scanOrderItem,
		func(i *models.OrderItem) int { return i.ProductID }, ids)
}

func orderItemsByOrder(ctx context.Context, conn *sql.DB, ids []int) (map[int][]models.OrderItem, error) {
	return byParent(ctx, conn, "order_items", orderItemColumns, "order_id", scanOrderItem,
		func(i *models.OrderItem) int { return i.OrderID }, ids)
}

func ordersByUser(ctx context.Context, conn *sql.DB, ids []int) (map[int][]models.Order, error) {
	return byParent(ctx, conn, "orders", orderColumns, "user_id", scanOrder,
		func(o *models.Order) int { return o.UserID }, ids)
}

func brandsByID(ctx context.Context, conn *sql.DB, ids []int) (map[int]*models.Brand, error) {
	return byID(ctx, conn, "brands", brandColumns, scanBrand, func(b *models.Brand) int { return b.ID }, ids)
}

func categoriesByID(ctx context.Context, conn *sql.DB, ids []int) (map[int]*models.Category, error) {
	return byID(ctx, conn, "categories", categoryColumns, scanCategory, func(c *models.Category) int { return c.ID }, ids)
}

func productsByID(ctx context.Context, conn *sql.DB, ids []int) (map[int]*models.Product, error) {
	return byID(ctx, conn, "products", productColumns, scanProduct, func(p *models.Product) int { return p.ID }, ids)
}

func ordersByID(ctx context.Context, conn *sql.DB, ids []int) (map[int]*models.Order, error) {
	return byID(ctx, conn, "orders", orderColumns, scanOrder, func(o *models.Order) int { return o.ID }, ids)
}

func profilesByID(ctx context.Context, conn *sql.DB, ids []int) (map[int]*models.Profile, error) {
	return byID(ctx, conn, "profiles", "id, first_name, last_name", scanProfile, func(p *models.Profile) int { return p.ID }, ids)
}

// usersByID loads users with their role.
func usersByID(ctx context.Context, conn *sql.DB, ids []int) (map[int]*models.User, error) {
	out := make(map[int]*models.User)
	ids = uniqueInts(ids)
	if len(ids) == 0 {
		return out, nil
	}
	q := "SELECT " + userColumns + " FROM " + userFrom + " WHERE u.id = ANY($1)"
	rows, err := queryAll(ctx, conn, scanUser, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}
