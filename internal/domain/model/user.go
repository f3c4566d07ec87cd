package model

import (
	"time"

	"github.com/morlov/merchant-admin/internal/domain/enums"
)

type User struct {
	ID           int64
	PublicID     string
	Name         string
	Email        string
	Role         enums.Role
	PasswordHash string
	AvatarKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
