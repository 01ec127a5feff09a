package models

import "time"

type Review struct {
	ID        int       `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    *int      `json:"userId"`
	ProductID int       `json:"productId"`
	User      *User     `json:"user,omitempty"`
	Product   *Product  `json:"product,omitempty"`
}

type CreateReviewRequest struct {
	Rating    int    `json:"rating" form:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" form:"comment" binding:"required"`
	ProductID int    `json:"productId" form:"productId" binding:"required,min=1"`
	UserID    *int   `json:"userId" form:"userId" binding:"omitempty,min=1"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" form:"rating" binding:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" form:"comment" binding:"omitempty,min=1"`
}
