package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// BrandRepository is satisfied by both the plain and the cached brand
// repositories. Brand reads have fixed association sets instead of include
// lists so that each maps onto one cache key.
type BrandRepository interface {
	List(ctx context.Context) ([]models.Brand, error)
	Paginate(ctx context.Context, p models.Page) ([]models.Brand, int, error)
	Get(ctx context.Context, id int) (*models.Brand, error)
	GetWithProducts(ctx context.Context, id int) (*models.Brand, error)
	Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error)
	Update(ctx context.Context, id int, req models.UpdateBrandRequest) (*models.Brand, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// BrandService manages guitar brands.
type BrandService interface {
	CRUDService[models.Brand, models.CreateBrandRequest, models.UpdateBrandRequest]
	GetWithProducts(ctx context.Context, id int) (*models.Brand, error)
	Products(ctx context.Context, id int) ([]models.Product, error)
}

type brandService struct {
	repo   BrandRepository
	events EventPublisher
	logger *slog.Logger
}

func NewBrandService(repo BrandRepository, events EventPublisher, logger *slog.Logger) BrandService {
	return &brandService{repo: repo, events: events, logger: logger}
}

// List returns every brand with its products.
func (s *brandService) List(ctx context.Context) ([]models.Brand, error) {
	brands, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	return brands, nil
}

func (s *brandService) Paginate(ctx context.Context, p models.Page) ([]models.Brand, int, error) {
	brands, total, err := s.repo.Paginate(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("paginating brands: %w", err)
	}
	return brands, total, nil
}

// Get returns the brand without its products.
func (s *brandService) Get(ctx context.Context, id int) (*models.Brand, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting brand: %w", err)
	}
	if b == nil {
		return nil, &NotFoundError{Resource: "Brand", ID: id}
	}
	return b, nil
}

func (s *brandService) GetWithProducts(ctx context.Context, id int) (*models.Brand, error) {
	b, err := s.repo.GetWithProducts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting brand: %w", err)
	}
	if b == nil {
		return nil, &NotFoundError{Resource: "Brand", ID: id}
	}
	return b, nil
}

func (s *brandService) Products(ctx context.Context, id int) ([]models.Product, error) {
	b, err := s.GetWithProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Products == nil {
		return []models.Product{}, nil
	}
	return b.Products, nil
}

func (s *brandService) Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error) {
	b, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, writeError("creating brand", err)
	}

	s.events.Publish(models.BrandCreated, models.NamedPayload{Name: b.Name, ID: b.ID})
	s.logger.Info("brand created", "id", b.ID, "name", b.Name)
	return b, nil
}

func (s *brandService) Update(ctx context.Context, id int, req models.UpdateBrandRequest) (*models.Brand, error) {
	b, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, writeError("updating brand", err)
	}
	if b == nil {
		return nil, &NotFoundError{Resource: "Brand", ID: id}
	}

	s.events.Publish(models.BrandUpdated, models.IDPayload{ID: id})
	s.logger.Info("brand updated", "id", id)
	return b, nil
}

// Delete removes the brand. Its products are removed by the database.
func (s *brandService) Delete(ctx context.Context, id int) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting brand: %w", err)
	}
	if !ok {
		return &NotFoundError{Resource: "Brand", ID: id}
	}

	s.events.Publish(models.BrandDeleted, models.IDPayload{ID: id})
	s.logger.Info("brand deleted", "id", id)
	return nil
}
