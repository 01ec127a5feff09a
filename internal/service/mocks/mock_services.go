package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// MockCRUDService is a mock implementation of service.CRUDService.
type MockCRUDService[T, C, U any] struct {
	mock.Mock
}

//nolint:revive
func (m *MockCRUDService[T, C, U]) List(ctx context.Context) ([]T, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]T), args.Error(1)
}

//nolint:revive
func (m *MockCRUDService[T, C, U]) Paginate(ctx context.Context, p models.Page) ([]T, int, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]T), args.Int(1), args.Error(2)
}

//nolint:revive
func (m *MockCRUDService[T, C, U]) Get(ctx context.Context, id int) (*T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

//nolint:revive
func (m *MockCRUDService[T, C, U]) Create(ctx context.Context, req C) (*T, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

//nolint:revive
func (m *MockCRUDService[T, C, U]) Update(ctx context.Context, id int, req U) (*T, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

//nolint:revive
func (m *MockCRUDService[T, C, U]) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBrandService is a mock implementation of service.BrandService.
type MockBrandService struct {
	MockCRUDService[models.Brand, models.CreateBrandRequest, models.UpdateBrandRequest]
}

//nolint:revive
func (m *MockBrandService) GetWithProducts(ctx context.Context, id int) (*models.Brand, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Brand), args.Error(1)
}

//nolint:revive
func (m *MockBrandService) Products(ctx context.Context, id int) ([]models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockCategoryService is a mock implementation of service.CategoryService.
type MockCategoryService struct {
	MockCRUDService[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest]
}

//nolint:revive
func (m *MockCategoryService) Products(ctx context.Context, id int) ([]models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	MockCRUDService[models.Product, models.CreateProductRequest, models.UpdateProductRequest]
}

//nolint:revive
func (m *MockProductService) Reviews(ctx context.Context, id int) ([]models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

//nolint:revive
func (m *MockProductService) ByCategory(ctx context.Context, categoryID int) ([]models.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	MockCRUDService[models.Order, models.CreateOrderRequest, models.UpdateOrderRequest]
}

//nolint:revive
func (m *MockOrderService) Items(ctx context.Context, id int) ([]models.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderItem), args.Error(1)
}

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	MockCRUDService[models.User, models.CreateUserRequest, models.UpdateUserRequest]
}

//nolint:revive
func (m *MockUserService) Orders(ctx context.Context, id int) ([]models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

//nolint:revive
func (m *MockUserService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
