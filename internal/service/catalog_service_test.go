package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/guitar-store/internal/db"
	"github.com/prudhivi99/guitar-store/internal/logger"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service/mocks"
)

func newTestProductService(repo *mocks.MockProductRepository, brands *mocks.MockBrandCacheInvalidator, events *mocks.MockEventPublisher) ProductService {
	return NewProductService(repo, brands, events, logger.Discard())
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

func TestCreateProduct(t *testing.T) {
	req := models.CreateProductRequest{SKU: "ST-1", Name: "Stratocaster", Price: 1500, CategoryID: 1, BrandID: 2}
	created := &models.Product{ID: 10, SKU: "ST-1", Name: "Stratocaster", Price: 1500, CategoryID: 1, BrandID: 2}

	repo := new(mocks.MockProductRepository)
	repo.On("Create", mock.Anything, req).Return(created, nil)
	brands := new(mocks.MockBrandCacheInvalidator)
	brands.On("Invalidate", mock.Anything, 2).Return()
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.ProductCreated, created).Return()

	p, err := newTestProductService(repo, brands, events).Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 10, p.ID)
	repo.AssertExpectations(t)
	brands.AssertExpectations(t)
	events.AssertNumberOfCalls(t, "Publish", 1)
}

func TestCreateProduct_PriceBelowMinimum(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	brands := new(mocks.MockBrandCacheInvalidator)
	events := new(mocks.MockEventPublisher)

	_, err := newTestProductService(repo, brands, events).Create(context.Background(), models.CreateProductRequest{
		SKU: "CHEAP", Name: "Toy guitar", Price: 999.99, CategoryID: 1, BrandID: 1,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)
	assert.Contains(t, ve.Message, "1000")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateProduct_UnknownBrand(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, db.ErrInvalidReference)
	events := new(mocks.MockEventPublisher)

	_, err := newTestProductService(repo, new(mocks.MockBrandCacheInvalidator), events).Create(context.Background(), models.CreateProductRequest{
		SKU: "LP-1", Name: "Les Paul", Price: 2500, CategoryID: 1, BrandID: 99,
	})

	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUpdateProduct_MovesBrand(t *testing.T) {
	brandID := 3
	req := models.UpdateProductRequest{BrandID: &brandID}

	repo := new(mocks.MockProductRepository)
	repo.On("Get", mock.Anything, 10, mock.Anything).Return(&models.Product{ID: 10, BrandID: 2}, nil)
	updated := &models.Product{ID: 10, BrandID: 3}
	repo.On("Update", mock.Anything, 10, req).Return(updated, nil)
	brands := new(mocks.MockBrandCacheInvalidator)
	brands.On("Invalidate", mock.Anything, 2).Return().Once()
	brands.On("Invalidate", mock.Anything, 3).Return().Once()
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.ProductUpdated, updated).Return()

	_, err := newTestProductService(repo, brands, events).Update(context.Background(), 10, req)

	require.NoError(t, err)
	brands.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestUpdateProduct_PriceBelowMinimum(t *testing.T) {
	price := 500.0
	repo := new(mocks.MockProductRepository)
	brands := new(mocks.MockBrandCacheInvalidator)
	events := new(mocks.MockEventPublisher)

	_, err := newTestProductService(repo, brands, events).Update(context.Background(), 10, models.UpdateProductRequest{Price: &price})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "price", ve.Field)
	assert.Contains(t, ve.Message, "1000")
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	brands.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	repo.On("Get", mock.Anything, 404, mock.Anything).Return(nil, nil)
	events := new(mocks.MockEventPublisher)

	err := newTestProductService(repo, new(mocks.MockBrandCacheInvalidator), events).Delete(context.Background(), 404)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Product #404 not found", nf.Error())
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDeleteProduct(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	repo.On("Get", mock.Anything, 10, mock.Anything).Return(&models.Product{ID: 10, BrandID: 2}, nil)
	repo.On("Delete", mock.Anything, 10).Return(true, nil)
	brands := new(mocks.MockBrandCacheInvalidator)
	brands.On("Invalidate", mock.Anything, 2).Return()
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.ProductDeleted, models.IDPayload{ID: 10}).Return()

	err := newTestProductService(repo, brands, events).Delete(context.Background(), 10)

	require.NoError(t, err)
	brands.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestProductReviews_Empty(t *testing.T) {
	repo := new(mocks.MockProductRepository)
	repo.On("Get", mock.Anything, 10, models.Include{models.RelReviews}).Return(&models.Product{ID: 10}, nil)

	reviews, err := NewProductService(repo, nil, nil, logger.Discard()).Reviews(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

// ---------------------------------------------------------------------------
// Reviews
// ---------------------------------------------------------------------------

func TestCreateReview_MissingProduct(t *testing.T) {
	repo := new(mocks.MockRepository[models.Review, models.CreateReviewRequest, models.UpdateReviewRequest])
	products := new(mocks.MockProductRepository)
	products.On("Get", mock.Anything, 9, mock.Anything).Return(nil, nil)
	events := new(mocks.MockEventPublisher)

	svc := NewReviewService(repo, products, events, logger.Discard())
	_, err := svc.Create(context.Background(), models.CreateReviewRequest{Rating: 5, Comment: "Great neck", ProductID: 9})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Product", nf.Resource)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateReview(t *testing.T) {
	req := models.CreateReviewRequest{Rating: 4, Comment: "Stays in tune", ProductID: 1}
	repo := new(mocks.MockRepository[models.Review, models.CreateReviewRequest, models.UpdateReviewRequest])
	repo.On("Create", mock.Anything, req).Return(&models.Review{ID: 3, Rating: 4, Comment: "Stays in tune", ProductID: 1}, nil)
	products := new(mocks.MockProductRepository)
	products.On("Get", mock.Anything, 1, mock.Anything).Return(&models.Product{ID: 1}, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.ReviewCreated, models.ReviewPayload{ID: 3, Comment: "Stays in tune"}).Return()

	svc := NewReviewService(repo, products, events, logger.Discard())
	r, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 3, r.ID)
	events.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// Brands
// ---------------------------------------------------------------------------

func TestDeleteBrand_PublishesOnce(t *testing.T) {
	repo := new(mocks.MockBrandRepository)
	repo.On("Delete", mock.Anything, 4).Return(true, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.BrandDeleted, models.IDPayload{ID: 4}).Return()

	err := NewBrandService(repo, events, logger.Discard()).Delete(context.Background(), 4)

	require.NoError(t, err)
	events.AssertNumberOfCalls(t, "Publish", 1)
	events.AssertExpectations(t)
}

func TestDeleteBrand_NotFound(t *testing.T) {
	repo := new(mocks.MockBrandRepository)
	repo.On("Delete", mock.Anything, 4).Return(false, nil)
	events := new(mocks.MockEventPublisher)

	err := NewBrandService(repo, events, logger.Discard()).Delete(context.Background(), 4)

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateBrand_NamedPayload(t *testing.T) {
	req := models.CreateBrandRequest{Name: "Ibanez"}
	repo := new(mocks.MockBrandRepository)
	repo.On("Create", mock.Anything, req).Return(&models.Brand{ID: 5, Name: "Ibanez"}, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.BrandCreated, models.NamedPayload{Name: "Ibanez", ID: 5}).Return()

	_, err := NewBrandService(repo, events, logger.Discard()).Create(context.Background(), req)

	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestCreateBrand_DuplicateIsInternal(t *testing.T) {
	repo := new(mocks.MockBrandRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil, &pq.Error{Code: "23505"})

	_, err := NewBrandService(repo, new(mocks.MockEventPublisher), logger.Discard()).Create(context.Background(), models.CreateBrandRequest{Name: "Fender"})

	require.Error(t, err)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
	assert.Contains(t, err.Error(), "creating brand")
}

func TestBrandProducts_NotFound(t *testing.T) {
	repo := new(mocks.MockBrandRepository)
	repo.On("GetWithProducts", mock.Anything, 8).Return(nil, nil)

	_, err := NewBrandService(repo, nil, logger.Discard()).Products(context.Background(), 8)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Brand #8 not found", nf.Error())
}

// ---------------------------------------------------------------------------
// Categories, orders and order items
// ---------------------------------------------------------------------------

func TestCreateCategory_NamedPayload(t *testing.T) {
	req := models.CreateCategoryRequest{Name: "Acoustic"}
	repo := new(mocks.MockRepository[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest])
	repo.On("Create", mock.Anything, req).Return(&models.Category{ID: 2, Name: "Acoustic"}, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.CategoryCreated, models.NamedPayload{Name: "Acoustic", ID: 2}).Return()

	_, err := NewCategoryService(repo, nil, events, logger.Discard()).Create(context.Background(), req)

	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestDeleteCategory_InvalidatesOwningBrands(t *testing.T) {
	repo := new(mocks.MockRepository[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest])
	repo.On("Get", mock.Anything, 4, models.Include{models.RelProducts}).Return(&models.Category{ID: 4, Products: []models.Product{
		{ID: 1, BrandID: 2}, {ID: 2, BrandID: 5}, {ID: 3, BrandID: 2},
	}}, nil)
	repo.On("Delete", mock.Anything, 4).Return(true, nil)
	brands := new(mocks.MockBrandCacheInvalidator)
	brands.On("Invalidate", mock.Anything, 2).Return().Once()
	brands.On("Invalidate", mock.Anything, 5).Return().Once()
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.CategoryDeleted, models.IDPayload{ID: 4}).Return()

	err := NewCategoryService(repo, brands, events, logger.Discard()).Delete(context.Background(), 4)

	require.NoError(t, err)
	brands.AssertExpectations(t)
	brands.AssertNumberOfCalls(t, "Invalidate", 2)
	events.AssertExpectations(t)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	repo := new(mocks.MockRepository[models.Category, models.CreateCategoryRequest, models.UpdateCategoryRequest])
	repo.On("Get", mock.Anything, 9, mock.Anything).Return(nil, nil)
	brands := new(mocks.MockBrandCacheInvalidator)
	events := new(mocks.MockEventPublisher)

	err := NewCategoryService(repo, brands, events, logger.Discard()).Delete(context.Background(), 9)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	brands.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUpdateOrder_NotFound(t *testing.T) {
	status := models.OrderCompleted
	repo := new(mocks.MockRepository[models.Order, models.CreateOrderRequest, models.UpdateOrderRequest])
	repo.On("Update", mock.Anything, 77, mock.Anything).Return(nil, nil)
	events := new(mocks.MockEventPublisher)

	_, err := NewOrderService(repo, events, logger.Discard()).Update(context.Background(), 77, models.UpdateOrderRequest{Status: &status})

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Order", nf.Resource)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestDeleteOrderItem_Kind(t *testing.T) {
	repo := new(mocks.MockRepository[models.OrderItem, models.CreateOrderItemRequest, models.UpdateOrderItemRequest])
	repo.On("Delete", mock.Anything, 6).Return(true, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.OrderItemDeleted, models.IDPayload{ID: 6}).Return()

	err := NewOrderItemService(repo, events, logger.Discard()).Delete(context.Background(), 6)

	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestListOrders_Error(t *testing.T) {
	repo := new(mocks.MockRepository[models.Order, models.CreateOrderRequest, models.UpdateOrderRequest])
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db error"))

	_, err := NewOrderService(repo, nil, logger.Discard()).List(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing orders")
}
