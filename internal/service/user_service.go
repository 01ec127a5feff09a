package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/prudhivi99/guitar-store/internal/models"
)

// UserRepository persists users with their profile and role reference.
type UserRepository interface {
	Repository[models.User, models.NewUser, models.UserChanges]
	RoleByName(ctx context.Context, name string) (*models.Role, error)
}

// IdentityProvider manages accounts at the external identity provider.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (uid string, err error)
	SetRole(ctx context.Context, uid, role string) error
}

// UserService manages store users.
type UserService interface {
	CRUDService[models.User, models.CreateUserRequest, models.UpdateUserRequest]
	Orders(ctx context.Context, id int) ([]models.Order, error)
	// Register is the public sign-up. The role is always "user".
	Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error)
}

type userService struct {
	repo     UserRepository
	identity IdentityProvider
	events   EventPublisher
	logger   *slog.Logger
}

var userInclude = models.Include{models.RelProfile}

// NewUserService builds the user service. identity may be nil, in which case
// users are stored without a provider account.
func NewUserService(repo UserRepository, identity IdentityProvider, events EventPublisher, logger *slog.Logger) UserService {
	return &userService{repo: repo, identity: identity, events: events, logger: logger}
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx, userInclude)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *userService) Paginate(ctx context.Context, p models.Page) ([]models.User, int, error) {
	users, total, err := s.repo.Paginate(ctx, p, userInclude)
	if err != nil {
		return nil, 0, fmt.Errorf("paginating users: %w", err)
	}
	return users, total, nil
}

func (s *userService) Get(ctx context.Context, id int) (*models.User, error) {
	return s.getWith(ctx, id, userInclude)
}

func (s *userService) getWith(ctx context.Context, id int, inc models.Include) (*models.User, error) {
	u, err := s.repo.Get(ctx, id, inc)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if u == nil {
		return nil, &NotFoundError{Resource: "User", ID: id}
	}
	return u, nil
}

// Orders returns the orders placed by user id.
func (s *userService) Orders(ctx context.Context, id int) ([]models.Order, error) {
	u, err := s.getWith(ctx, id, models.Include{models.RelOrders})
	if err != nil {
		return nil, err
	}
	if u.Orders == nil {
		return []models.Order{}, nil
	}
	return u.Orders, nil
}

func (s *userService) Register(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	req.Role = &models.RoleInput{Name: models.RoleUser}
	return s.Create(ctx, req)
}

// Create resolves the role, creates the provider account with the role claim
// and then stores the user with a hashed password.
func (s *userService) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	roleName := models.RoleUser
	if req.Role != nil && req.Role.Name != "" {
		roleName = req.Role.Name
	}
	role, err := s.role(ctx, roleName)
	if err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	nu := models.NewUser{Email: req.Email, PasswordHash: hash, RoleID: role.ID}
	if req.Profile != nil {
		nu.FirstName = req.Profile.FirstName
		nu.LastName = req.Profile.LastName
	}

	if s.identity != nil {
		uid, err := s.identity.CreateAccount(ctx, req.Email, req.Password)
		if err != nil {
			return nil, &UpstreamError{Service: "identity provider", Err: err}
		}
		if err := s.identity.SetRole(ctx, uid, role.Name); err != nil {
			return nil, &UpstreamError{Service: "identity provider", Err: err}
		}
		nu.FirebaseUID = &uid
	}

	u, err := s.repo.Create(ctx, nu)
	if err != nil {
		return nil, writeError("creating user", err)
	}

	s.publish(models.UserCreated, models.UserPayload{Email: u.Email})
	s.logger.Info("user created", "id", u.ID, "role", role.Name)
	return u, nil
}

// Update patches the user. A role change points the user at another role row
// and is mirrored to the provider's role claim.
func (s *userService) Update(ctx context.Context, id int, req models.UpdateUserRequest) (*models.User, error) {
	ch := models.UserChanges{Email: req.Email}
	if req.Profile != nil {
		ch.FirstName = req.Profile.FirstName
		ch.LastName = req.Profile.LastName
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		ch.PasswordHash = &hash
	}

	var role *models.Role
	if req.Role != nil {
		r, err := s.role(ctx, req.Role.Name)
		if err != nil {
			return nil, err
		}
		role = r
		ch.RoleID = &r.ID
	}

	u, err := s.repo.Update(ctx, id, ch)
	if err != nil {
		return nil, writeError("updating user", err)
	}
	if u == nil {
		return nil, &NotFoundError{Resource: "User", ID: id}
	}

	if role != nil && s.identity != nil && u.FirebaseUID != nil {
		if err := s.identity.SetRole(ctx, *u.FirebaseUID, role.Name); err != nil {
			return nil, &UpstreamError{Service: "identity provider", Err: err}
		}
	}

	s.publish(models.UserUpdated, models.UserPayload{ID: u.ID, Email: u.Email})
	s.logger.Info("user updated", "id", id)
	return u, nil
}

func (s *userService) Delete(ctx context.Context, id int) error {
	u, err := s.repo.Get(ctx, id, nil)
	if err != nil {
		return fmt.Errorf("getting user: %w", err)
	}
	if u == nil {
		return &NotFoundError{Resource: "User", ID: id}
	}

	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if !ok {
		return &NotFoundError{Resource: "User", ID: id}
	}

	s.publish(models.UserDeleted, models.UserPayload{ID: id, Email: u.Email})
	s.logger.Info("user deleted", "id", id)
	return nil
}

func (s *userService) role(ctx context.Context, name string) (*models.Role, error) {
	role, err := s.repo.RoleByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("getting role: %w", err)
	}
	if role == nil {
		return nil, &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", name)}
	}
	return role, nil
}

func (s *userService) publish(kind string, payload any) {
	if s.events != nil {
		s.events.Publish(kind, payload)
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", &ValidationError{Field: "password", Message: err.Error()}
	}
	return string(hash), nil
}
