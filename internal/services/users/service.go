package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/model"
	"github.com/morlov/merchant-admin/internal/domain/rules"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var (
	ErrValidation = errors.New("validation error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Store interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByID(ctx context.Context, id int64) (model.User, error)
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	Delete(ctx context.Context, id int64) error
}

// Service is role-scoped CRUD over user accounts. Every operation checks the
// caller's capability from the static permission table before touching the
// store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     enums.Role
}

type UpdateInput struct {
	Name  string
	Email string
	Role  enums.Role
}

// List returns one page of users plus the unpaged total for the response
// meta block.
func (s *Service) List(ctx context.Context, caller authsvc.Identity, page, pageSize int) ([]model.User, int64, error) {
	if !rules.PermissionsFor(caller.Role).ViewUsers {
		return nil, 0, ErrForbidden
	}

	limit, offset := pageBounds(page, pageSize)
	users, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

func (s *Service) Get(ctx context.Context, caller authsvc.Identity, id int64) (model.User, error) {
	if !rules.PermissionsFor(caller.Role).ViewUsers {
		return model.User{}, ErrForbidden
	}

	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, caller authsvc.Identity, input CreateInput) (model.User, error) {
	if !rules.PermissionsFor(caller.Role).CreateUsers {
		return model.User{}, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || input.Password == "" || !input.Role.Valid() {
		return model.User{}, ErrValidation
	}

	hash, err := authsvc.HashPassword(input.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.Create(ctx, model.User{
		PublicID:     uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Role:         input.Role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrDuplicate) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, caller authsvc.Identity, id int64, input UpdateInput) (model.User, error) {
	if !rules.PermissionsFor(caller.Role).UpdateUsers {
		return model.User{}, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" || !input.Role.Valid() {
		return model.User{}, ErrValidation
	}

	user, err := s.store.Update(ctx, model.User{
		ID:    id,
		Name:  input.Name,
		Email: input.Email,
		Role:  input.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrNotFound):
			return model.User{}, ErrNotFound
		case errors.Is(err, pgrepo.ErrDuplicate):
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *Service) Delete(ctx context.Context, caller authsvc.Identity, id int64) error {
	if !rules.PermissionsFor(caller.Role).DeleteUsers {
		return ErrForbidden
	}
	if id == caller.UserID {
		// Deleting yourself from the users screen locks the account out
		// mid-session; settings owns account removal.
		return ErrValidation
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func pageBounds(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
