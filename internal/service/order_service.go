package service

import (
	"context"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type OrderRepository = Repository[models.Order, models.CreateOrderRequest, models.UpdateOrderRequest]

type OrderItemRepository = Repository[models.OrderItem, models.CreateOrderItemRequest, models.UpdateOrderItemRequest]

// OrderService manages orders.
type OrderService interface {
	CRUDService[models.Order, models.CreateOrderRequest, models.UpdateOrderRequest]
	Items(ctx context.Context, id int) ([]models.OrderItem, error)
}

// OrderItemService manages order line items.
type OrderItemService = CRUDService[models.OrderItem, models.CreateOrderItemRequest, models.UpdateOrderItemRequest]

type orderService struct {
	*crudService[models.Order, models.CreateOrderRequest, models.UpdateOrderRequest]
}

func NewOrderService(repo OrderRepository, events EventPublisher, logger *slog.Logger) OrderService {
	return &orderService{newCRUDService(repo, events, resource[models.Order, models.CreateOrderRequest]{
		name:    "Order",
		label:   "order",
		plural:  "orders",
		kind:    "order",
		include: models.Include{models.RelUser, models.RelItems},
		id:      func(o *models.Order) int { return o.ID },
	}, logger)}
}

// Items returns the line items of order id.
func (s *orderService) Items(ctx context.Context, id int) ([]models.OrderItem, error) {
	o, err := s.getWith(ctx, id, models.Include{models.RelItems})
	if err != nil {
		return nil, err
	}
	if o.Items == nil {
		return []models.OrderItem{}, nil
	}
	return o.Items, nil
}

func NewOrderItemService(repo OrderItemRepository, events EventPublisher, logger *slog.Logger) OrderItemService {
	return newCRUDService(repo, events, resource[models.OrderItem, models.CreateOrderItemRequest]{
		name:    "OrderItem",
		label:   "order item",
		plural:  "order items",
		kind:    "orderItem",
		include: models.Include{models.RelOrder, models.RelProduct},
		id:      func(i *models.OrderItem) int { return i.ID },
	}, logger)
}
