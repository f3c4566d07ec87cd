package auth

import (
	"errors"
	"time"

	"github.com/morlov/merchant-admin/internal/domain/enums"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
	ErrResetNotFound      = errors.New("reset token not found")
)

type SessionRecord struct {
	SID       string
	UserID    int64
	Role      string
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    int64
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}

// Identity is the authenticated principal as it travels with a request.
type Identity struct {
	UserID int64
	SID    string
	Role   enums.Role
}

type UserInfo struct {
	ID       int64
	PublicID string
	Name     string
	Email    string
	Role     enums.Role
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	User          UserInfo
}

// ForgotResult carries the issued reset token. The transport layer decides
// whether the token may appear in the response body (dev only) or stays out
// of band.
type ForgotResult struct {
	ResetToken string
	Known      bool
}
