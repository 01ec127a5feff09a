package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type ReviewRepository = Repository[models.Review, models.CreateReviewRequest, models.UpdateReviewRequest]

// ReviewService manages product reviews.
type ReviewService = CRUDService[models.Review, models.CreateReviewRequest, models.UpdateReviewRequest]

// ProductFinder looks up a product without associations.
type ProductFinder interface {
	Get(ctx context.Context, id int, inc models.Include) (*models.Product, error)
}

// NewReviewService builds the review service. A review can only be created
// for an existing product.
func NewReviewService(repo ReviewRepository, products ProductFinder, events EventPublisher, logger *slog.Logger) ReviewService {
	payload := func(r *models.Review) any { return models.ReviewPayload{ID: r.ID, Comment: r.Comment} }
	return newCRUDService(repo, events, resource[models.Review, models.CreateReviewRequest]{
		name:    "Review",
		label:   "review",
		plural:  "reviews",
		kind:    "review",
		include: models.Include{models.RelUser, models.RelProduct},
		id:      func(r *models.Review) int { return r.ID },
		created: payload,
		updated: payload,
		validate: func(ctx context.Context, req models.CreateReviewRequest) error {
			p, err := products.Get(ctx, req.ProductID, nil)
			if err != nil {
				return fmt.Errorf("getting product: %w", err)
			}
			if p == nil {
				return &NotFoundError{Resource: "Product", ID: req.ProductID}
			}
			return nil
		},
	}, logger)
}
