package model

import (
	"time"

	"github.com/morlov/merchant-admin/internal/domain/enums"
)

type Merchant struct {
	ID           int64
	PublicID     string
	Name         string
	ContactEmail string
	Phone        string
	Status       enums.MerchantStatus
	OwnerUserID  int64
	LogoKey      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
