package settings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/domain/model"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
)

var caller = authsvc.Identity{UserID: 5, SID: "sid-5", Role: enums.RoleAdmin}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	users := newFakeUsers(t, "old-password")
	svc := NewService(users, nil)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, caller, "wrong", "new-password"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected wrong password error, got %v", err)
	}

	if err := svc.ChangePassword(ctx, caller, "old-password", "new-password"); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if err := authsvc.CheckPassword(users.user.PasswordHash, "new-password"); err != nil {
		t.Fatalf("new password not stored: %v", err)
	}
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	users := newFakeUsers(t, "pw")
	svc := NewService(users, nil)

	updated, err := svc.UpdateProfile(context.Background(), caller, ProfileInput{
		Name:  "New Name",
		Email: "New@Example.com",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("email not normalized: %q", updated.Email)
	}
	if updated.Role != enums.RoleAdmin {
		t.Fatalf("profile update must not change the role, got %q", updated.Role)
	}
}

func TestUploadAvatarValidatesInput(t *testing.T) {
	users := newFakeUsers(t, "pw")
	storage := &fakeStorage{}
	svc := NewService(users, storage)
	ctx := context.Background()

	if _, err := svc.UploadAvatar(ctx, caller, bytes.NewReader([]byte("x")), 1, "text/plain"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for non-image, got %v", err)
	}
	if _, err := svc.UploadAvatar(ctx, caller, nil, 1, "image/png"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for nil body, got %v", err)
	}

	url, err := svc.UploadAvatar(ctx, caller, bytes.NewReader([]byte("png")), 3, "image/png")
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	if url == "" || storage.lastKey == "" {
		t.Fatalf("avatar not stored: url=%q key=%q", url, storage.lastKey)
	}
	if users.user.AvatarKey != storage.lastKey {
		t.Fatalf("avatar key not saved on user: %q vs %q", users.user.AvatarKey, storage.lastKey)
	}
}

type fakeUsers struct {
	user model.User
}

func newFakeUsers(t *testing.T, password string) *fakeUsers {
	t.Helper()
	hash, err := authsvc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &fakeUsers{user: model.User{
		ID:           caller.UserID,
		Name:         "Old Name",
		Email:        "old@example.com",
		Role:         enums.RoleAdmin,
		PasswordHash: hash,
	}}
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	if id != f.user.ID {
		return model.User{}, pgrepo.ErrNotFound
	}
	return f.user, nil
}

func (f *fakeUsers) Update(_ context.Context, user model.User) (model.User, error) {
	if user.ID != f.user.ID {
		return model.User{}, pgrepo.ErrNotFound
	}
	f.user.Name = user.Name
	f.user.Email = user.Email
	f.user.Role = user.Role
	return f.user, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	if id != f.user.ID {
		return pgrepo.ErrNotFound
	}
	f.user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUsers) UpdateAvatar(_ context.Context, id int64, avatarKey string) error {
	if id != f.user.ID {
		return pgrepo.ErrNotFound
	}
	f.user.AvatarKey = avatarKey
	return nil
}

type fakeStorage struct {
	lastKey string
}

func (f *fakeStorage) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	f.lastKey = key
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return fmt.Sprintf("https://cdn.example.test/%s", key), nil
}
