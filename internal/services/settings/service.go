package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/morlov/merchant-admin/internal/domain/model"
	pgrepo "github.com/morlov/merchant-admin/internal/repo/postgres"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
)

const maxAvatarBytes = 5 << 20

var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("user not found")
	ErrWrongPassword = errors.New("current password is wrong")
	ErrEmailTaken    = errors.New("email already registered")
)

type UserStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	Update(ctx context.Context, user model.User) (model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateAvatar(ctx context.Context, id int64, avatarKey string) error
}

type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Service covers the account-settings screen: own profile, password change
// and avatar upload. It always operates on the caller's own record.
type Service struct {
	users   UserStore
	storage ObjectStorage
}

func NewService(users UserStore, storage ObjectStorage) *Service {
	return &Service{users: users, storage: storage}
}

type ProfileInput struct {
	Name  string
	Email string
}

func (s *Service) Profile(ctx context.Context, caller authsvc.Identity) (model.User, string, error) {
	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.User{}, "", ErrNotFound
		}
		return model.User{}, "", fmt.Errorf("get profile: %w", err)
	}

	avatarURL := ""
	if user.AvatarKey != "" && s.storage != nil {
		if url, err := s.storage.PresignGet(ctx, user.AvatarKey, 0); err == nil {
			avatarURL = url
		}
	}
	return user, avatarURL, nil
}

func (s *Service) UpdateProfile(ctx context.Context, caller authsvc.Identity, input ProfileInput) (model.User, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if input.Name == "" || input.Email == "" {
		return model.User{}, ErrValidation
	}

	current, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get profile: %w", err)
	}

	updated, err := s.users.Update(ctx, model.User{
		ID:    current.ID,
		Name:  input.Name,
		Email: input.Email,
		Role:  current.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, pgrepo.ErrNotFound):
			return model.User{}, ErrNotFound
		case errors.Is(err, pgrepo.ErrDuplicate):
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

func (s *Service) ChangePassword(ctx context.Context, caller authsvc.Identity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return ErrValidation
	}

	user, err := s.users.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get profile: %w", err)
	}

	if err := authsvc.CheckPassword(user.PasswordHash, currentPassword); err != nil {
		return ErrWrongPassword
	}

	hash, err := authsvc.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *Service) UploadAvatar(ctx context.Context, caller authsvc.Identity, body io.Reader, size int64, contentType string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("object storage is unavailable")
	}
	if body == nil || size <= 0 || size > maxAvatarBytes {
		return "", ErrValidation
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrValidation
	}

	key := fmt.Sprintf("avatars/%d/%s", caller.UserID, uuid.NewString())
	if err := s.storage.Put(ctx, key, body, size, contentType); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	if err := s.users.UpdateAvatar(ctx, caller.UserID, key); err != nil {
		return "", fmt.Errorf("save avatar key: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, key, 0)
	if err != nil {
		return "", fmt.Errorf("presign avatar: %w", err)
	}
	return url, nil
}
