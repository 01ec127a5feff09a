package models

// Brand is a guitar manufacturer.
type Brand struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	LogoURL  *string   `json:"logoUrl"`
	Products []Product `json:"products,omitempty"`
}

type CreateBrandRequest struct {
	Name    string  `json:"name" form:"name" binding:"required"`
	LogoURL *string `json:"logoUrl" form:"logoUrl" binding:"omitempty,url"`
}

type UpdateBrandRequest struct {
	Name    *string `json:"name" form:"name" binding:"omitempty,min=1"`
	LogoURL *string `json:"logoUrl" form:"logoUrl" binding:"omitempty,url"`
}
