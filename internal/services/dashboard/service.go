package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/model"
	"github.com/morlov/merchant-admin/internal/domain/rules"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
)

const recentWindow = 30 * 24 * time.Hour

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

type MerchantCounter interface {
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status enums.MerchantStatus) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	GetByOwner(ctx context.Context, ownerUserID int64) (model.Merchant, error)
}

// Service builds the role-aware dashboard summary. Wide roles fan the count
// queries out concurrently; a merchant-role caller gets a summary scoped to
// its own record.
type Service struct {
	users     UserCounter
	merchants MerchantCounter
	now       func() time.Time
}

func NewService(users UserCounter, merchants MerchantCounter) *Service {
	return &Service{
		users:     users,
		merchants: merchants,
		now:       time.Now,
	}
}

func (s *Service) Summary(ctx context.Context, caller authsvc.Identity) (model.DashboardSummary, error) {
	perms := rules.PermissionsFor(caller.Role)
	if !perms.ViewAllMerchants {
		return s.ownSummary(ctx, caller)
	}

	var summary model.DashboardSummary
	since := s.now().Add(-recentWindow)

	g, gctx := errgroup.WithContext(ctx)
	if perms.ViewUsers {
		g.Go(func() error {
			count, err := s.users.Count(gctx)
			if err != nil {
				return fmt.Errorf("count users: %w", err)
			}
			summary.TotalUsers = count
			return nil
		})
	}
	g.Go(func() error {
		count, err := s.merchants.Count(gctx)
		if err != nil {
			return fmt.Errorf("count merchants: %w", err)
		}
		summary.TotalMerchants = count
		return nil
	})
	g.Go(func() error {
		count, err := s.merchants.CountByStatus(gctx, enums.MerchantStatusActive)
		if err != nil {
			return fmt.Errorf("count active merchants: %w", err)
		}
		summary.ActiveMerchants = count
		return nil
	})
	g.Go(func() error {
		count, err := s.merchants.CountCreatedSince(gctx, since)
		if err != nil {
			return fmt.Errorf("count recent merchants: %w", err)
		}
		summary.NewMerchants30Days = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.DashboardSummary{}, err
	}
	return summary, nil
}

func (s *Service) ownSummary(ctx context.Context, caller authsvc.Identity) (model.DashboardSummary, error) {
	own, err := s.merchants.GetByOwner(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.DashboardSummary{}, nil
		}
		return model.DashboardSummary{}, fmt.Errorf("get own merchant: %w", err)
	}

	summary := model.DashboardSummary{TotalMerchants: 1}
	if own.Status == enums.MerchantStatusActive {
		summary.ActiveMerchants = 1
	}
	if own.CreatedAt.After(s.now().Add(-recentWindow)) {
		summary.NewMerchants30Days = 1
	}
	return summary, nil
}
