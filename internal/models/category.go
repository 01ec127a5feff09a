package models

type Category struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Products    []Product `json:"products,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" form:"name" binding:"required"`
	Description *string `json:"description" form:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name" form:"name" binding:"omitempty,min=1"`
	Description *string `json:"description" form:"description"`
}
