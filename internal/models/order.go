package models

import "time"

// Order statuses.
const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID        int         `json:"id"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UserID    int         `json:"userId"`
	User      *User       `json:"user,omitempty"`
	Items     []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ID        int      `json:"id"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	OrderID   int      `json:"orderId"`
	ProductID int      `json:"productId"`
	Order     *Order   `json:"order,omitempty"`
	Product   *Product `json:"product,omitempty"`
}

type CreateOrderRequest struct {
	UserID int     `json:"userId" form:"userId" binding:"required,min=1"`
	Total  float64 `json:"total" form:"total" binding:"min=0"`
	Status string  `json:"status" form:"status" binding:"omitempty,oneof=pending completed cancelled"`
}

type UpdateOrderRequest struct {
	UserID *int     `json:"userId" form:"userId" binding:"omitempty,min=1"`
	Total  *float64 `json:"total" form:"total" binding:"omitempty,min=0"`
	Status *string  `json:"status" form:"status" binding:"omitempty,oneof=pending completed cancelled"`
}

type CreateOrderItemRequest struct {
	OrderID   int     `json:"orderId" form:"orderId" binding:"required,min=1"`
	ProductID int     `json:"productId" form:"productId" binding:"required,min=1"`
	Quantity  int     `json:"quantity" form:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" form:"price" binding:"min=0"`
}

type UpdateOrderItemRequest struct {
	OrderID   *int     `json:"orderId" form:"orderId" binding:"omitempty,min=1"`
	ProductID *int     `json:"productId" form:"productId" binding:"omitempty,min=1"`
	Quantity  *int     `json:"quantity" form:"quantity" binding:"omitempty,min=1"`
	Price     *float64 `json:"price" form:"price" binding:"omitempty,min=0"`
}
