package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prudhivi99/guitar-store/internal/logger"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service/mocks"
)

func strPtr(s string) *string { return &s }

func newTestUserService(repo *mocks.MockUserRepository, identity *mocks.MockIdentityProvider, events *mocks.MockEventPublisher) UserService {
	return NewUserService(repo, identity, events, logger.Discard())
}

func TestCreateUser_DefaultRole(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("RoleByName", mock.Anything, models.RoleUser).Return(&models.Role{ID: 1, Name: models.RoleUser}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(nu models.NewUser) bool {
		return nu.Email == "ann@example.com" &&
			nu.RoleID == 1 &&
			nu.FirstName == "Ann" &&
			nu.FirebaseUID != nil && *nu.FirebaseUID == "uid-1" &&
			bcrypt.CompareHashAndPassword([]byte(nu.PasswordHash), []byte("secret1")) == nil
	})).Return(&models.User{ID: 4, Email: "ann@example.com"}, nil)

	identity := new(mocks.MockIdentityProvider)
	identity.On("CreateAccount", mock.Anything, "ann@example.com", "secret1").Return("uid-1", nil)
	identity.On("SetRole", mock.Anything, "uid-1", models.RoleUser).Return(nil)

	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.UserCreated, models.UserPayload{Email: "ann@example.com"}).Return()

	u, err := newTestUserService(repo, identity, events).Create(context.Background(), models.CreateUserRequest{
		Email:    "ann@example.com",
		Password: "secret1",
		Profile:  &models.ProfileInput{FirstName: "Ann", LastName: "Lee"},
	})

	require.NoError(t, err)
	assert.Equal(t, 4, u.ID)
	repo.AssertExpectations(t)
	identity.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateUser_UnknownRole(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("RoleByName", mock.Anything, "superuser").Return(nil, nil)
	identity := new(mocks.MockIdentityProvider)
	events := new(mocks.MockEventPublisher)

	_, err := newTestUserService(repo, identity, events).Create(context.Background(), models.CreateUserRequest{
		Email: "x@example.com", Password: "secret1", Role: &models.RoleInput{Name: "superuser"},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "role", ve.Field)
	identity.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateUser_IdentityFailure(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("RoleByName", mock.Anything, models.RoleAdmin).Return(&models.Role{ID: 2, Name: models.RoleAdmin}, nil)
	identity := new(mocks.MockIdentityProvider)
	identity.On("CreateAccount", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("EMAIL_EXISTS"))

	_, err := newTestUserService(repo, identity, new(mocks.MockEventPublisher)).Create(context.Background(), models.CreateUserRequest{
		Email: "x@example.com", Password: "secret1", Role: &models.RoleInput{Name: models.RoleAdmin},
	})

	assert.ErrorIs(t, err, ErrUpstream)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_ForcesUserRole(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("RoleByName", mock.Anything, models.RoleUser).Return(&models.Role{ID: 1, Name: models.RoleUser}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(&models.User{ID: 9, Email: "bob@example.com"}, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.UserCreated, mock.Anything).Return()

	svc := NewUserService(repo, nil, events, logger.Discard())
	_, err := svc.Register(context.Background(), models.CreateUserRequest{
		Email: "bob@example.com", Password: "secret1", Role: &models.RoleInput{Name: models.RoleAdmin},
	})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "RoleByName", mock.Anything, models.RoleAdmin)
	repo.AssertExpectations(t)
}

func TestUpdateUser_RepointsRole(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("RoleByName", mock.Anything, models.RoleAdmin).Return(&models.Role{ID: 2, Name: models.RoleAdmin}, nil)
	repo.On("Update", mock.Anything, 4, mock.MatchedBy(func(ch models.UserChanges) bool {
		return ch.RoleID != nil && *ch.RoleID == 2 &&
			ch.LastName != nil && *ch.LastName == "Smith" &&
			ch.Email == nil && ch.PasswordHash == nil
	})).Return(&models.User{
		ID: 4, Email: "ann@example.com", FirebaseUID: strPtr("uid-4"),
		RoleID: 2, Role: &models.Role{ID: 2, Name: models.RoleAdmin},
	}, nil)

	identity := new(mocks.MockIdentityProvider)
	identity.On("SetRole", mock.Anything, "uid-4", models.RoleAdmin).Return(nil)

	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.UserUpdated, models.UserPayload{ID: 4, Email: "ann@example.com"}).Return()

	u, err := newTestUserService(repo, identity, events).Update(context.Background(), 4, models.UpdateUserRequest{
		Profile: &models.UpdateProfileInput{LastName: strPtr("Smith")},
		Role:    &models.RoleInput{Name: models.RoleAdmin},
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role.Name)
	repo.AssertExpectations(t)
	identity.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestUpdateUser_HashesPassword(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("Update", mock.Anything, 4, mock.MatchedBy(func(ch models.UserChanges) bool {
		return ch.PasswordHash != nil &&
			*ch.PasswordHash != "newsecret" &&
			bcrypt.CompareHashAndPassword([]byte(*ch.PasswordHash), []byte("newsecret")) == nil
	})).Return(&models.User{ID: 4, Email: "ann@example.com"}, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.UserUpdated, mock.Anything).Return()

	_, err := newTestUserService(repo, new(mocks.MockIdentityProvider), events).Update(context.Background(), 4, models.UpdateUserRequest{
		Password: strPtr("newsecret"),
	})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDeleteUser(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("Get", mock.Anything, 4, mock.Anything).Return(&models.User{ID: 4, Email: "ann@example.com"}, nil)
	repo.On("Delete", mock.Anything, 4).Return(true, nil)
	events := new(mocks.MockEventPublisher)
	events.On("Publish", models.UserDeleted, models.UserPayload{ID: 4, Email: "ann@example.com"}).Return()

	err := newTestUserService(repo, new(mocks.MockIdentityProvider), events).Delete(context.Background(), 4)

	require.NoError(t, err)
	events.AssertExpectations(t)
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("Get", mock.Anything, 4, mock.Anything).Return(nil, nil)
	events := new(mocks.MockEventPublisher)

	err := newTestUserService(repo, new(mocks.MockIdentityProvider), events).Delete(context.Background(), 4)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "User #4 not found", nf.Error())
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestUserOrders(t *testing.T) {
	repo := new(mocks.MockUserRepository)
	repo.On("Get", mock.Anything, 4, models.Include{models.RelOrders}).Return(&models.User{
		ID: 4, Orders: []models.Order{{ID: 1, Status: models.OrderPending}},
	}, nil)

	orders, err := newTestUserService(repo, nil, nil).Orders(context.Background(), 4)

	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
