package merchants

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
	ErrNotFound   = errors.New("merchant not found")
)

type Store interface {
	Create(ctx context.Context, merchant model.Merchant) (model.Merchant, error)
	GetByID(ctx context.Context, id int64) (model.Merchant, error)
	GetByOwner(ctx context.Context, ownerUserID int64) (model.Merchant, error)
	List(ctx context.Context, limit, offset int) ([]model.Merchant, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, merchant model.Merchant) (model.Merchant, error)
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

type CreateInput struct {
	Name         string
	ContactEmail string
	Phone        string
	OwnerUserID  int64
}

type UpdateInput struct {
	Name         string
	ContactEmail string
	Phone        string
	Status       enums.MerchantStatus
}

// List returns every merchant for callers holding ViewAllMerchants, along
// with the unpaged total; a merchant-role caller gets a one-element list
// with its own record.
func (s *Service) List(ctx context.Context, caller authsvc.Identity, page, pageSize int) ([]model.Merchant, int64, error) {
	perms := rules.PermissionsFor(caller.Role)
	if !perms.ViewMerchants {
		return nil, 0, ErrForbidden
	}

	if !perms.ViewAllMerchants {
		own, err := s.store.GetByOwner(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrNotFound) {
				return []model.Merchant{}, 0, nil
			}
			return nil, 0, fmt.Errorf("get own merchant: %w", err)
		}
		return []model.Merchant{own}, 1, nil
	}

	limit, offset := pageBounds(page, pageSize)
	merchants, err := s.store.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list merchants: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count merchants: %w", err)
	}
	return merchants, total, nil
}

func (s *Service) Get(ctx context.Context, caller authsvc.Identity, id int64) (model.Merchant, error) {
	perms := rules.PermissionsFor(caller.Role)
	if !perms.ViewMerchants {
		return model.Merchant{}, ErrForbidden
	}

	merchant, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.Merchant{}, ErrNotFound
		}
		return model.Merchant{}, fmt.Errorf("get merchant: %w", err)
	}

	if !perms.ViewAllMerchants && merchant.OwnerUserID != caller.UserID {
		// Scoped callers must not learn whether a foreign id exists.
		return model.Merchant{}, ErrNotFound
	}
	return merchant, nil
}

func (s *Service) Create(ctx context.Context, caller authsvc.Identity, input CreateInput) (model.Merchant, error) {
	if !rules.PermissionsFor(caller.Role).CreateMerchants {
		return model.Merchant{}, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.ContactEmail = strings.TrimSpace(strings.ToLower(input.ContactEmail))
	if input.Name == "" || input.ContactEmail == "" {
		return model.Merchant{}, ErrValidation
	}

	merchant, err := s.store.Create(ctx, model.Merchant{
		PublicID:     uuid.NewString(),
		Name:         input.Name,
		ContactEmail: input.ContactEmail,
		Phone:        strings.TrimSpace(input.Phone),
		Status:       enums.MerchantStatusActive,
		OwnerUserID:  input.OwnerUserID,
	})
	if err != nil {
		return model.Merchant{}, fmt.Errorf("create merchant: %w", err)
	}
	return merchant, nil
}

func (s *Service) Update(ctx context.Context, caller authsvc.Identity, id int64, input UpdateInput) (model.Merchant, error) {
	if !rules.PermissionsFor(caller.Role).UpdateMerchants {
		return model.Merchant{}, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.ContactEmail = strings.TrimSpace(strings.ToLower(input.ContactEmail))
	if input.Name == "" || input.ContactEmail == "" {
		return model.Merchant{}, ErrValidation
	}
	if input.Status != enums.MerchantStatusActive && input.Status != enums.MerchantStatusSuspended {
		return model.Merchant{}, ErrValidation
	}

	merchant, err := s.store.Update(ctx, model.Merchant{
		ID:           id,
		Name:         input.Name,
		ContactEmail: input.ContactEmail,
		Phone:        strings.TrimSpace(input.Phone),
		Status:       input.Status,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.Merchant{}, ErrNotFound
		}
		return model.Merchant{}, fmt.Errorf("update merchant: %w", err)
	}
	return merchant, nil
}

func (s *Service) Delete(ctx context.Context, caller authsvc.Identity, id int64) error {
	if !rules.PermissionsFor(caller.Role).DeleteMerchants {
		return ErrForbidden
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete merchant: %w", err)
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
