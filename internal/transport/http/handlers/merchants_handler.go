package handlers

import (
	"errors"
	"net/http"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	merchantssvc "github.com/morlov/merchant-admin/internal/services/merchants"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
	httperrors "github.com/morlov/merchant-admin/internal/transport/http/errors"
)

type MerchantsHandler struct {
	service *merchantssvc.Service
}

func NewMerchantsHandler(service *merchantssvc.Service) *MerchantsHandler {
	return &MerchantsHandler{service: service}
}

func (h *MerchantsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	page, pageSize := paging(r)
	merchants, total, err := h.service.List(r.Context(), identity, page, pageSize)
	if err != nil {
		handleMerchantsError(w, err)
		return
	}
	httperrors.OKMeta(w, "merchants", dto.NewMerchantListResponse(merchants), httperrors.Meta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

func (h *MerchantsHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid merchant id")
		return
	}

	merchant, err := h.service.Get(r.Context(), identity, id)
	if err != nil {
		handleMerchantsError(w, err)
		return
	}
	httperrors.OK(w, "merchant", dto.NewMerchantResponse(merchant))
}

func (h *MerchantsHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateMerchantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	merchant, err := h.service.Create(r.Context(), identity, merchantssvc.CreateInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		OwnerUserID:  req.OwnerUserID,
	})
	if err != nil {
		handleMerchantsError(w, err)
		return
	}
	httperrors.Created(w, "merchant created", dto.NewMerchantResponse(merchant))
}

func (h *MerchantsHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid merchant id")
		return
	}

	var req dto.UpdateMerchantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	merchant, err := h.service.Update(r.Context(), identity, id, merchantssvc.UpdateInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
		Status:       enums.MerchantStatus(req.Status),
	})
	if err != nil {
		handleMerchantsError(w, err)
		return
	}
	httperrors.OK(w, "merchant updated", dto.NewMerchantResponse(merchant))
}

func (h *MerchantsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid merchant id")
		return
	}

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		handleMerchantsError(w, err)
		return
	}
	httperrors.OK(w, "merchant deleted", nil)
}

func handleMerchantsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, merchantssvc.ErrForbidden):
		writeForbidden(w, "you do not have permission to manage merchants")
	case errors.Is(err, merchantssvc.ErrNotFound):
		writeNotFound(w, "merchant not found")
	case errors.Is(err, merchantssvc.ErrValidation):
		writeValidation(w, map[string]string{"request": "is invalid"})
	default:
		writeInternal(w, "internal server error")
	}
}
