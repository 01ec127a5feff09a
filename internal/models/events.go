package models

import (
	"strings"
	"time"
)

// Change event kinds.
const (
	BrandCreated = "brand-created"
	BrandUpdated = "brand-updated"
	BrandDeleted = "brand-deleted"

	CategoryCreated = "category-created"
	CategoryUpdated = "category-updated"
	CategoryDeleted = "category-deleted"

	ProductCreated = "product-created"
	ProductUpdated = "product-updated"
	ProductDeleted = "product-deleted"

	OrderCreated = "order-created"
	OrderUpdated = "order-updated"
	OrderDeleted = "order-deleted"

	OrderItemCreated = "orderItem-created"
	OrderItemUpdated = "orderItem-updated"
	OrderItemDeleted = "orderItem-deleted"

	ReviewCreated = "review-created"
	ReviewUpdated = "review-updated"
	ReviewDeleted = "review-deleted"

	UserCreated = "user-created"
	UserUpdated = "user-updated"
	UserDeleted = "user-deleted"
)

// ChangeEvent announces a committed mutation. Kind and Data keep the
// {type, data} wire shape the browser toast script reads.
type ChangeEvent struct {
	Kind   string    `json:"type"`
	Data   any       `json:"data"`
	Origin string    `json:"origin,omitempty"`
	At     time.Time `json:"at"`
}

// Resource returns the resource part of the kind, e.g. "orderItem" for
// "orderItem-created".
func (e ChangeEvent) Resource() string {
	return Resource(e.Kind)
}

// Resource splits a kind at its last dash.
func Resource(kind string) string {
	if i := strings.LastIndexByte(kind, '-'); i > 0 {
		return kind[:i]
	}
	return kind
}

// IDPayload is the payload of most update and delete events.
type IDPayload struct {
	ID int `json:"id"`
}

// NamedPayload is the payload of brand and category creation events.
type NamedPayload struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type ReviewPayload struct {
	ID      int    `json:"id"`
	Comment string `json:"comment"`
}

type UserPayload struct {
	ID    int    `json:"id,omitempty"`
	Email string `json:"email"`
}
