package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type OrderItemRepository struct {
	db *sql.DB
}

func NewOrderItemRepository(database *PostgresDB) *OrderItemRepository {
	return &OrderItemRepository{db: database.Conn}
}

func (r *OrderItemRepository) List(ctx context.Context, inc models.Include) ([]models.OrderItem, error) {
	items, err := queryAll(ctx, r.db, scanOrderItem, "SELECT "+orderItemColumns+" FROM order_items ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	return items, r.load(ctx, items, inc)
}

func (r *OrderItemRepository) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]models.OrderItem, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM order_items")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count order items: %w", err)
	}
	items, err := queryAll(ctx, r.db, scanOrderItem,
		"SELECT "+orderItemColumns+" FROM order_items ORDER BY id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query order items: %w", err)
	}
	return items, total, r.load(ctx, items, inc)
}

func (r *OrderItemRepository) Get(ctx context.Context, id int, inc models.Include) (*models.OrderItem, error) {
	item, err := queryOne(ctx, r.db, scanOrderItem, "SELECT "+orderItemColumns+" FROM order_items WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order item: %w", err)
	}
	if item == nil {
		return nil, nil
	}
	one := []models.OrderItem{*item}
	if err := r.load(ctx, one, inc); err != nil {
		return nil, err
	}
	return &one[0], nil
}

func (r *OrderItemRepository) Create(ctx context.Context, req models.CreateOrderItemRequest) (*models.OrderItem, error) {
	var item models.OrderItem
	err := scanOrderItem(r.db.QueryRowContext(ctx,
		`INSERT INTO order_items (quantity, price, order_id, product_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+orderItemColumns,
		req.Quantity, req.Price, req.OrderID, req.ProductID), &item)
	if err != nil {
		return nil, wrapWrite("create order item", err)
	}
	return &item, nil
}

func (r *OrderItemRepository) Update(ctx context.Context, id int, req models.UpdateOrderItemRequest) (*models.OrderItem, error) {
	var u updateSet
	if req.Quantity != nil {
		u.set("quantity", *req.Quantity)
	}
	if req.Price != nil {
		u.set("price", *req.Price)
	}
	if req.OrderID != nil {
		u.set("order_id", *req.OrderID)
	}
	if req.ProductID != nil {
		u.set("product_id", *req.ProductID)
	}
	if u.empty() {
		return r.Get(ctx, id, nil)
	}

	q, args := u.build("order_items", id)
	item, err := queryOne(ctx, r.db, scanOrderItem, q+" RETURNING "+orderItemColumns, args...)
	if err != nil {
		return nil, wrapWrite("update order item", err)
	}
	return item, nil
}

func (r *OrderItemRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := execAffected(ctx, r.db, "DELETE FROM order_items WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete order item: %w", err)
	}
	return ok, nil
}

func (r *OrderItemRepository) load(ctx context.Context, items []models.OrderItem, inc models.Include) error {
	if len(items) == 0 || len(inc) == 0 {
		return nil
	}
	orderIDs := make([]int, len(items))
	productIDs := make([]int, len(items))
	for i := range items {
		orderIDs[i] = items[i].OrderID
		productIDs[i] = items[i].ProductID
	}

	if inc.Has(models.RelOrder) {
		orders, err := ordersByID(ctx, r.db, orderIDs)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].Order = orders[items[i].OrderID]
		}
	}
	if inc.Has(models.RelProduct) {
		products, err := productsByID(ctx, r.db, productIDs)
		if err != nil {
			return err
		}
		for i := range items {
			items[i].Product = products[items[i].ProductID]
		}
	}
	return nil
}
