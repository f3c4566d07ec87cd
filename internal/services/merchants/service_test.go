package merchants

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/model"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
)

var (
	superAdmin  = authsvc.Identity{UserID: 1, SID: "sid-1", Role: enums.RoleSuperAdmin}
	plainAdmin  = authsvc.Identity{UserID: 2, SID: "sid-2", Role: enums.RoleAdmin}
	merchantOne = authsvc.Identity{UserID: 10, SID: "sid-10", Role: enums.RoleMerchant}
	merchantTwo = authsvc.Identity{UserID: 11, SID: "sid-11", Role: enums.RoleMerchant}
)

func TestMerchantRoleSeesOnlyOwnRecord(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Create(ctx, plainAdmin, CreateInput{
		Name: "First Shop", ContactEmail: "first@example.com", OwnerUserID: merchantOne.UserID,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, plainAdmin, CreateInput{
		Name: "Second Shop", ContactEmail: "second@example.com", OwnerUserID: merchantTwo.UserID,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	listed, total, err := svc.List(ctx, merchantOne, 1, 20)
	if err != nil {
		t.Fatalf("list as merchant: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != first.ID {
		t.Fatalf("merchant must see exactly its own record, got %+v", listed)
	}
	if total != 1 {
		t.Fatalf("scoped total must cover only the caller's record, got %d", total)
	}

	if _, err := svc.Get(ctx, merchantOne, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign merchant id must read as not found, got %v", err)
	}

	all, allTotal, err := svc.List(ctx, plainAdmin, 1, 20)
	if err != nil {
		t.Fatalf("list as admin: %v", err)
	}
	if len(all) != 2 || allTotal != 2 {
		t.Fatalf("admin must see every merchant, got %d of %d", len(all), allTotal)
	}
}

func TestMerchantRoleCannotMutate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin, CreateInput{
		Name: "Shop", ContactEmail: "shop@example.com", OwnerUserID: merchantOne.UserID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Create(ctx, merchantOne, CreateInput{
		Name: "Another", ContactEmail: "a@example.com",
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("merchant create: expected forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, merchantOne, created.ID, UpdateInput{
		Name: "Renamed", ContactEmail: "shop@example.com", Status: enums.MerchantStatusActive,
	}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("merchant update: expected forbidden, got %v", err)
	}
	if err := svc.Delete(ctx, merchantOne, created.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("merchant delete: expected forbidden, got %v", err)
	}
}

func TestUpdateValidatesStatus(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, plainAdmin, CreateInput{
		Name: "Shop", ContactEmail: "shop@example.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, plainAdmin, created.ID, UpdateInput{
		Name: "Shop", ContactEmail: "shop@example.com", Status: enums.MerchantStatus("frozen"),
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	updated, err := svc.Update(ctx, plainAdmin, created.ID, UpdateInput{
		Name: "Shop", ContactEmail: "shop@example.com", Status: enums.MerchantStatusSuspended,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != enums.MerchantStatusSuspended {
		t.Fatalf("status not applied: %+v", updated)
	}
}

type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	merchants map[int64]model.Merchant
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, merchants: map[int64]model.Merchant{}}
}

func (f *fakeStore) Create(_ context.Context, merchant model.Merchant) (model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	merchant.ID = f.nextID
	f.nextID++
	f.merchants[merchant.ID] = merchant
	return merchant, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	merchant, ok := f.merchants[id]
	if !ok {
		return model.Merchant{}, pgrepo.ErrNotFound
	}
	return merchant, nil
}

func (f *fakeStore) GetByOwner(_ context.Context, ownerUserID int64) (model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, merchant := range f.merchants {
		if merchant.OwnerUserID == ownerUserID {
			return merchant, nil
		}
	}
	return model.Merchant{}, pgrepo.ErrNotFound
}

func (f *fakeStore) List(_ context.Context, limit, offset int) ([]model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Merchant
	for _, merchant := range f.merchants {
		out = append(out, merchant)
	}
	return out, nil
}

func (f *fakeStore) Count(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.merchants)), nil
}

func (f *fakeStore) Update(_ context.Context, merchant model.Merchant) (model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.merchants[merchant.ID]
	if !ok {
		return model.Merchant{}, pgrepo.ErrNotFound
	}
	existing.Name = merchant.Name
	existing.ContactEmail = merchant.ContactEmail
	existing.Phone = merchant.Phone
	existing.Status = merchant.Status
	f.merchants[merchant.ID] = existing
	return existing, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.merchants[id]; !ok {
		return pgrepo.ErrNotFound
	}
	delete(f.merchants, id)
	return nil
}
