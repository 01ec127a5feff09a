package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// MockRepository is a mock implementation of service.Repository.
type MockRepository[T, C, U any] struct {
	mock.Mock
}

//nolint:revive
func (m *MockRepository[T, C, U]) List(ctx context.Context, inc models.Include) ([]T, error) {
	args := m.Called(ctx, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

//nolint:revive
func (m *MockRepository[T, C, U]) Paginate(ctx context.Context, p models.Page, inc models.Include) ([]T, int, error) {
	args := m.Called(ctx, p, inc)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]T), args.Int(1), args.Error(2)
}

//nolint:revive
func (m *MockRepository[T, C, U]) Get(ctx context.Context, id int, inc models.Include) (*T, error) {
	args := m.Called(ctx, id, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

//nolint:revive
func (m *MockRepository[T, C, U]) Create(ctx context.Context, req C) (*T, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

//nolint:revive
func (m *MockRepository[T, C, U]) Update(ctx context.Context, id int, req U) (*T, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

//nolint:revive
func (m *MockRepository[T, C, U]) Delete(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockProductRepository is a mock implementation of service.ProductRepository.
type MockProductRepository struct {
	MockRepository[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
}

//nolint:revive
func (m *MockProductRepository) ListByCategory(ctx context.Context, categoryID int, inc models.Include) ([]models.Product, error) {
	args := m.Called(ctx, categoryID, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockUserRepository is a mock implementation of service.UserRepository.
type MockUserRepository struct {
	MockRepository[models.User, models.NewUser, models.UserChanges]
}

//nolint:revive
func (m *MockUserRepository) RoleByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

// MockBrandRepository is a mock implementation of service.BrandRepository.
type MockBrandRepository struct {
	mock.Mock
}

//nolint:revive
func (m *MockBrandRepository) List(ctx context.Context) ([]models.Brand, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Brand), args.Error(1)
}

//nolint:revive
func (m *MockBrandRepository) Paginate(ctx context.Context, p models.Page) ([]models.Brand, int, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Brand), args.Int(1), args.Error(2)
}

//nolint:revive
func (m *MockBrandRepository) Get(ctx context.Context, id int) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

//nolint:revive
func (m *MockBrandRepository) GetWithProducts(ctx context.Context, id int) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

//nolint:revive
func (m *MockBrandRepository) Create(ctx context.Context, req models.CreateBrandRequest) (*models.Brand, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

//nolint:revive
func (m *MockBrandRepository) Update(ctx context.Context, id int, req models.UpdateBrandRequest) (*models.Brand, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

//nolint:revive
func (m *MockBrandRepository) Delete(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
