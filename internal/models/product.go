package models

// MinProductPrice is the lowest price a product may be listed at.
const MinProductPrice = 1000

type Product struct {
	ID          int     `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    *string `json:"imageUrl"`
	CategoryID  int     `json:"categoryId"`
	BrandID     int     `json:"brandId"`

	Category   *Category   `json:"category,omitempty"`
	Brand      *Brand      `json:"brand,omitempty"`
	Reviews    []Review    `json:"reviews,omitempty"`
	OrderItems []OrderItem `json:"orderItems,omitempty"`
}

type CreateProductRequest struct {
	SKU         string  `json:"sku" form:"sku" binding:"required"`
	Name        string  `json:"name" form:"name" binding:"required"`
	Description string  `json:"description" form:"description"`
	Price       float64 `json:"price" form:"price" binding:"required,gt=0"`
	Stock       int     `json:"stock" form:"stock" binding:"min=0"`
	ImageURL    *string `json:"imageUrl" form:"imageUrl" binding:"omitempty,url"`
	CategoryID  int     `json:"categoryId" form:"categoryId" binding:"required,min=1"`
	BrandID     int     `json:"brandId" form:"brandId" binding:"required,min=1"`
}

type UpdateProductRequest struct {
	SKU         *string  `json:"sku" form:"sku" binding:"omitempty,min=1"`
	Name        *string  `json:"name" form:"name" binding:"omitempty,min=1"`
	Description *string  `json:"description" form:"description"`
	Price       *float64 `json:"price" form:"price" binding:"omitempty,gt=0"`
	Stock       *int     `json:"stock" form:"stock" binding:"omitempty,min=0"`
	ImageURL    *string  `json:"imageUrl" form:"imageUrl" binding:"omitempty,url"`
	CategoryID  *int     `json:"categoryId" form:"categoryId" binding:"omitempty,min=1"`
	BrandID     *int     `json:"brandId" form:"brandId" binding:"omitempty,min=1"`
}
