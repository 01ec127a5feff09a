package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// ProductRepository adds the by-category listing to the common contract.
type ProductRepository interface {
	Repository[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
	ListByCategory(ctx context.Context, categoryID int, inc models.Include) ([]models.Product, error)
}

// BrandCacheInvalidator drops cached brand reads. Brands embed their
// products, so product writes must invalidate the owning brand.
type BrandCacheInvalidator interface {
	Invalidate(ctx context.Context, brandID int)
}

// ProductService manages the guitar catalog.
type ProductService interface {
	CRUDService[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
	Reviews(ctx context.Context, id int) ([]models.Review, error)
	ByCategory(ctx context.Context, categoryID int) ([]models.Product, error)
}

type productService struct {
	*crudService[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
	products ProductRepository
	brands   BrandCacheInvalidator
}

// NewProductService builds the product service. brands may be nil when no
// brand cache is in use.
func NewProductService(repo ProductRepository, brands BrandCacheInvalidator, events EventPublisher, logger *slog.Logger) ProductService {
	full := func(p *models.Product) any { return p }
	return &productService{
		crudService: newCRUDService[models.Product, models.CreateProductRequest, models.UpdateProductRequest](repo, events, resource[models.Product, models.CreateProductRequest]{
			name:     "Product",
			label:    "product",
			plural:   "products",
			kind:     "product",
			include:  models.Include{models.RelCategory, models.RelBrand, models.RelReviews, models.RelOrderItems},
			id:       func(p *models.Product) int { return p.ID },
			created:  full,
			updated:  full,
			validate: validateNewProduct,
		}, logger),
		products: repo,
		brands:   brands,
	}
}

func validateNewProduct(_ context.Context, req models.CreateProductRequest) error {
	return checkPrice(req.Price)
}

func checkPrice(price float64) error {
	if price < models.MinProductPrice {
		return &ValidationError{
			Field:   "price",
			Message: fmt.Sprintf("price must be at least %d", models.MinProductPrice),
		}
	}
	return nil
}

func (s *productService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	p, err := s.crudService.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.BrandID)
	return p, nil
}

func (s *productService) Update(ctx context.Context, id int, req models.UpdateProductRequest) (*models.Product, error) {
	if req.Price != nil {
		if err := checkPrice(*req.Price); err != nil {
			return nil, err
		}
	}

	before, err := s.products.Get(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("getting product: %w", err)
	}
	if before == nil {
		return nil, &NotFoundError{Resource: "Product", ID: id}
	}

	p, err := s.crudService.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, before.BrandID)
	if p.BrandID != before.BrandID {
		s.invalidate(ctx, p.BrandID)
	}
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id int) error {
	before, err := s.products.Get(ctx, id, nil)
	if err != nil {
		return fmt.Errorf("getting product: %w", err)
	}
	if before == nil {
		return &NotFoundError{Resource: "Product", ID: id}
	}

	if err := s.crudService.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, before.BrandID)
	return nil
}

// Reviews returns the reviews of product id.
func (s *productService) Reviews(ctx context.Context, id int) ([]models.Review, error) {
	p, err := s.getWith(ctx, id, models.Include{models.RelReviews})
	if err != nil {
		return nil, err
	}
	if p.Reviews == nil {
		return []models.Review{}, nil
	}
	return p.Reviews, nil
}

func (s *productService) ByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	ps, err := s.products.ListByCategory(ctx, categoryID, models.Include{models.RelCategory, models.RelBrand})
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return ps, nil
}

func (s *productService) invalidate(ctx context.Context, brandID int) {
	if s.brands != nil {
		s.brands.Invalidate(ctx, brandID)
	}
}
