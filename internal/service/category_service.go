package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/models"
)

type CategoryRepository = Repository[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest]

// CategoryService manages guitar categories.
type CategoryService interface {
	CRUDService[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest]
	Products(ctx context.Context, id int) ([]models.Product, error)
}

type categoryService struct {
	*crudService[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest]
	brands BrandCacheInvalidator
}

// NewCategoryService builds the category service. Deleting a category
// removes its products, so brands is told about every brand that owned one.
// brands may be nil.
func NewCategoryService(repo CategoryRepository, brands BrandCacheInvalidator, events EventPublisher, logger *slog.Logger) CategoryService {
	return &categoryService{crudService: newCRUDService(repo, events, resource[models.Category, models.CreateCategoryRequest]{
		name:    "Category",
		label:   "category",
		plural:  "categories",
		kind:    "category",
		include: models.Include{models.RelProducts},
		id:      func(c *models.Category) int { return c.ID },
		created: func(c *models.Category) any { return models.NamedPayload{Name: c.Name, ID: c.ID} },
	}, logger), brands: brands}
}

func (s *categoryService) Delete(ctx context.Context, id int) error {
	if s.brands == nil {
		return s.crudService.Delete(ctx, id)
	}

	c, err := s.repo.Get(ctx, id, models.Include{models.RelProducts})
	if err != nil {
		return fmt.Errorf("getting category: %w", err)
	}
	if c == nil {
		return &NotFoundError{Resource: "Category", ID: id}
	}
	seen := make(map[int]bool)
	var owners []int
	for _, p := range c.Products {
		if !seen[p.BrandID] {
			seen[p.BrandID] = true
			owners = append(owners, p.BrandID)
		}
	}

	if err := s.crudService.Delete(ctx, id); err != nil {
		return err
	}
	for _, brandID := range owners {
		s.brands.Invalidate(ctx, brandID)
	}
	return nil
}

// Products returns the products filed under category id.
func (s *categoryService) Products(ctx context.Context, id int) ([]models.Product, error) {
	c, err := s.getWith(ctx, id, models.Include{models.RelProducts})
	if err != nil {
		return nil, err
	}
	if c.Products == nil {
		return []models.Product{}, nil
	}
	return c.Products, nil
}
