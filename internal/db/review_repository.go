package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(database *PostgresDB) *ReviewRepository {
	return &ReviewRepository{db: database.Conn}
}

func (r *ReviewRepository) List(ctx context.Context, inc models.Include) ([]models.Review, error) {
	reviews, err := queryAll(ctx, r.db, scanReview, "SELECT "+reviewColumns+" FROM reviews ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	return reviews, r.load(ctx, reviews, inc)
}

func (r *ReviewRepository) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]models.Review, int, error) {
	total, err := count(ctx, r.db, "SELECT COUNT(*) FROM reviews")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	reviews, err := queryAll(ctx, r.db, scanReview,
		"SELECT "+reviewColumns+" FROM reviews ORDER BY id LIMIT $1 OFFSET $2", p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}
	return reviews, total, r.load(ctx, reviews, inc)
}

func (r *ReviewRepository) Get(ctx context.Context, id int, inc models.Include) (*models.Review, error) {
	rev, err := queryOne(ctx, r.db, scanReview, "SELECT "+reviewColumns+" FROM reviews WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if rev == nil {
		return nil, nil
	}
	one := []models.Review{*rev}
	if err := r.load(ctx, one, inc); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Create stores a review stamped with the current time.
func (r *ReviewRepository) Create(ctx context.Context, req models.CreateReviewRequest) (*models.Review, error) {
	var rev models.Review
	err := scanReview(r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (rating, comment, created_at, user_id, product_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+reviewColumns,
		req.Rating, req.Comment, time.Now().UTC(), req.UserID, req.ProductID), &rev)
	if err != nil {
		return nil, wrapWrite("create review", err)
	}
	return &rev, nil
}

func (r *ReviewRepository) Update(ctx context.Context, id int, req models.UpdateReviewRequest) (*models.Review, error) {
	var u updateSet
	if req.Rating != nil {
		u.set("rating", *req.Rating)
	}
	if req.Comment != nil {
		u.set("comment", *req.Comment)
	}
	if u.empty() {
		return r.Get(ctx, id, nil)
	}

	q, args := u.build("reviews", id)
	rev, err := queryOne(ctx, r.db, scanReview, q+" RETURNING "+reviewColumns, args...)
	if err != nil {
		return nil, wrapWrite("update review", err)
	}
	return rev, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int) (bool, error) {
	ok, err := execAffected(ctx, r.db, "DELETE FROM reviews WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete review: %w", err)
	}
	return ok, nil
}

func (r *ReviewRepository) load(ctx context.Context, reviews []models.Review, inc models.Include) error {
	if len(reviews) == 0 || len(inc) == 0 {
		return nil
	}
	var userIDs []int
	productIDs := make([]int, len(reviews))
	for i := range reviews {
		if reviews[i].UserID != nil {
			userIDs = append(userIDs, *reviews[i].UserID)
		}
		productIDs[i] = reviews[i].ProductID
	}

	if inc.Has(models.RelUser) {
		users, err := usersByID(ctx, r.db, userIDs)
		if err != nil {
			return err
		}
		for i := range reviews {
			if reviews[i].UserID != nil {
				reviews[i].User = users[*reviews[i].UserID]
			}
		}
	}
	if inc.Has(models.RelProduct) {
		products, err := productsByID(ctx, r.db, productIDs)
		if err != nil {
			return err
		}
		for i := range reviews {
			reviews[i].Product = products[reviews[i].ProductID]
		}
	}
	return nil
}
