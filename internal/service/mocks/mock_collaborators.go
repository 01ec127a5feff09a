package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

//nolint:revive
func (m *MockEventPublisher) Publish(kind string, payload any) {
	m.Called(kind, payload)
}

// MockIdentityProvider is a mock implementation of service.IdentityProvider.
type MockIdentityProvider struct {
	mock.Mock
}

//nolint:revive
func (m *MockIdentityProvider) CreateAccount(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

//nolint:revive
func (m *MockIdentityProvider) SetRole(ctx context.Context, uid, role string) error {
	args := m.Called(ctx, uid, role)
	return args.Error(0)
}

// MockBrandCacheInvalidator is a mock implementation of
// service.BrandCacheInvalidator.
type MockBrandCacheInvalidator struct {
	mock.Mock
}

//nolint:revive
func (m *MockBrandCacheInvalidator) Invalidate(ctx context.Context, brandID int) {
	m.Called(ctx, brandID)
}
