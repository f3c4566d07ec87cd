package dto

import (
	"time"

	"github.com/morlov/merchant-admin/internal/domain/model"
)

type CreateMerchantRequest struct {
	Name         string `json:"name" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	Phone        string `json:"phone"`
	OwnerUserID  int64  `json:"owner_user_id" validate:"required"`
}

type UpdateMerchantRequest struct {
	Name         string `json:"name" validate:"required"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	Phone        string `json:"phone"`
	Status       string `json:"status" validate:"required"`
}

type MerchantResponse struct {
	ID           int64     `json:"id"`
	PublicID     string    `json:"public_id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone"`
	Status       string    `json:"status"`
	OwnerUserID  int64     `json:"owner_user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewMerchantResponse(merchant model.Merchant) MerchantResponse {
	return MerchantResponse{
		ID:           merchant.ID,
		PublicID:     merchant.PublicID,
		Name:         merchant.Name,
		ContactEmail: merchant.ContactEmail,
		Phone:        merchant.Phone,
		Status:       string(merchant.Status),
		OwnerUserID:  merchant.OwnerUserID,
		CreatedAt:    merchant.CreatedAt,
		UpdatedAt:    merchant.UpdatedAt,
	}
}

func NewMerchantListResponse(merchants []model.Merchant) []MerchantResponse {
	out := make([]MerchantResponse, 0, len(merchants))
	for _, merchant := range merchants {
		out = append(out, NewMerchantResponse(merchant))
	}
	return out
}
