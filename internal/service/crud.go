package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/guitar-store/internal/db"
	"github.com/prudhivi99/guitar-store/internal/models"
)

// Repository is the storage contract shared by every resource. Get and
// Update return (nil, nil) for a missing record; Delete reports whether a
// row was removed.
type Repository[T, C, U any] interface {
	List(ctx context.Context, inc models.Include) ([]T, error)
	Paginate(ctx context.Context, p models.Page, inc models.Include) ([]T, int, error)
	Get(ctx context.Context, id int, inc models.Include) (*T, error)
	Create(ctx context.Context, req C) (*T, error)
	Update(ctx context.Context, id int, req U) (*T, error)
	Delete(ctx context.Context, id int) (bool, error)
}

// CRUDService exposes the common operations of a resource.
type CRUDService[T, C, U any] interface {
	List(ctx context.Context) ([]T, error)
	Paginate(ctx context.Context, p models.Page) ([]T, int, error)
	Get(ctx context.Context, id int) (*T, error)
	Create(ctx context.Context, req C) (*T, error)
	Update(ctx context.Context, id int, req U) (*T, error)
	Delete(ctx context.Context, id int) error
}

// resource describes how a CRUD service names, loads and announces records.
type resource[T, C any] struct {
	name    string // "OrderItem", used in not found errors
	label   string // "order item", used in logs and wrapped errors
	plural  string
	kind    string // event prefix, "orderItem"
	include models.Include
	id      func(*T) int
	// created and updated build event payloads. Nil means {id}.
	created  func(*T) any
	updated  func(*T) any
	validate func(context.Context, C) error
}

type crudService[T, C, U any] struct {
	repo   Repository[T, C, U]
	events EventPublisher
	res    resource[T, C]
	logger *slog.Logger
}

func newCRUDService[T, C, U any](repo Repository[T, C, U], events EventPublisher, res resource[T, C], logger *slog.Logger) *crudService[T, C, U] {
	return &crudService[T, C, U]{repo: repo, events: events, res: res, logger: logger}
}

func (s *crudService[T, C, U]) List(ctx context.Context) ([]T, error) {
	items, err := s.repo.List(ctx, s.res.include)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.res.plural, err)
	}
	return items, nil
}

func (s *crudService[T, C, U]) Paginate(ctx context.Context, p models.Page) ([]T, int, error) {
	items, total, err := s.repo.Paginate(ctx, p, s.res.include)
	if err != nil {
		return nil, 0, fmt.Errorf("paginating %s: %w", s.res.plural, err)
	}
	return items, total, nil
}

func (s *crudService[T, C, U]) Get(ctx context.Context, id int) (*T, error) {
	return s.getWith(ctx, id, s.res.include)
}

func (s *crudService[T, C, U]) getWith(ctx context.Context, id int, inc models.Include) (*T, error) {
	item, err := s.repo.Get(ctx, id, inc)
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", s.res.label, err)
	}
	if item == nil {
		return nil, &NotFoundError{Resource: s.res.name, ID: id}
	}
	return item, nil
}

func (s *crudService[T, C, U]) Create(ctx context.Context, req C) (*T, error) {
	if s.res.validate != nil {
		if err := s.res.validate(ctx, req); err != nil {
			return nil, err
		}
	}

	item, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, writeError("creating "+s.res.label, err)
	}

	s.publish(s.res.kind+"-created", s.payload(s.res.created, item))
	s.logger.Info(s.res.label+" created", "id", s.res.id(item))
	return item, nil
}

func (s *crudService[T, C, U]) Update(ctx context.Context, id int, req U) (*T, error) {
	item, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, writeError("updating "+s.res.label, err)
	}
	if item == nil {
		return nil, &NotFoundError{Resource: s.res.name, ID: id}
	}

	s.publish(s.res.kind+"-updated", s.payload(s.res.updated, item))
	s.logger.Info(s.res.label+" updated", "id", id)
	return item, nil
}

func (s *crudService[T, C, U]) Delete(ctx context.Context, id int) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", s.res.label, err)
	}
	if !ok {
		return &NotFoundError{Resource: s.res.name, ID: id}
	}

	s.publish(s.res.kind+"-deleted", models.IDPayload{ID: id})
	s.logger.Info(s.res.label+" deleted", "id", id)
	return nil
}

func (s *crudService[T, C, U]) payload(build func(*T) any, item *T) any {
	if build != nil {
		return build(item)
	}
	return models.IDPayload{ID: s.res.id(item)}
}

func (s *crudService[T, C, U]) publish(kind string, payload any) {
	if s.events != nil {
		s.events.Publish(kind, payload)
	}
}

// writeError wraps a repository write error, turning dangling references
// into validation errors.
func writeError(op string, err error) error {
	if errors.Is(err, db.ErrInvalidReference) {
		return &ValidationError{Message: "referenced record does not exist"}
	}
	return fmt.Errorf("%s: %w", op, err)
}
