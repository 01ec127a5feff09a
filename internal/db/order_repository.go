package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// List returns all orders ordered by id.
func (r *OrderRepository) List(ctx context.Context, inc models.Include) ([]models.Order, error) {
	orders, err := queryAll(ctx, r.db, scanOrder, "SELECT "+orderColumns+" FROM orders ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	return orders, r.load(ctx, orders, inc)
}

func (r *OrderRepository) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]models.Order, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM orders")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	orders, err := queryAll(ctx, r.db, scanOrder,
		"SELECT "+orderColumns+" FROM orders ORDER BY id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	return orders, total, r.load(ctx, orders, inc)
}

// Get returns a single order
func (r *OrderRepository) Get(ctx context.Context, id int, inc models.Include) (*models.Order, error) {
	o, err := queryOne(ctx, r.db, scanOrder, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o == nil {
		return nil, nil
	}
	one := []models.Order{*o}
	if err := r.load(ctx, one, inc); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Create inserts a new order. An empty status means pending.
func (r *OrderRepository) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	status := req.Status
	if status == "" {
		status = models.OrderPending
	}

	var o models.Order
	err := scanOrder(r.db.QueryRowContext(ctx,
		"INSERT INTO orders (total, status, user_id) VALUES ($1, $2, $3) RETURNING "+orderColumns,
		req.Total, status, req.UserID), &o)
	if err != nil {
		return nil, wrapWrite("create order", err)
	}
	return &o, nil
}

func (r *OrderRepository) Update(ctx context.Context, id int, req models.UpdateOrderRequest) (*models.Order, error) {
	var u updateSet
	if req.UserID != nil {
		u.set("user_id", *req.UserID)
	}
	if req.Total != nil {
		u.set("total", *req.Total)
	}
	if req.Status != nil {
		u.set("status", *req.Status)
	}
	if u.empty() {
		return r.Get(ctx, id, nil)
	}

	q, args := u.build("orders", id)
	o, err := queryOne(ctx, r.db, scanOrder, q+" RETURNING "+orderColumns, args...)
	if err != nil {
		return nil, wrapWrite("update order", err)
	}
	return o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := execAffected(ctx, r.db, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}
	return ok, nil
}

func (r *OrderRepository) load(ctx context.Context, orders []models.Order, inc models.Include) error {
	if len(orders) == 0 || len(inc) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	userIDs := make([]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		userIDs[i] = orders[i].UserID
	}

	if inc.Has(models.RelUser) {
		users, err := usersByID(ctx, r.db, userIDs)
		if err != nil {
			return err
		}
		for i := range orders {
			orders[i].User = users[orders[i].UserID]
		}
	}
	if inc.Has(models.RelItems) {
		items, err := orderItemsByOrder(ctx, r.db, ids)
		if err != nil {
			return err
		}
		for i := range orders {
			orders[i].Items = items[orders[i].ID]
		}
	}
	return nil
}
