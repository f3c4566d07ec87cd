package handlers

import (
	"errors"
	"net/http"

	settingssvc "github.com/morlov/merchant-admin/internal/services/settings"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
	httperrors "github.com/morlov/merchant-admin/internal/transport/http/errors"
)

const maxAvatarUploadBytes = 5 << 20

type SettingsHandler struct {
	service *settingssvc.Service
}

func NewSettingsHandler(service *settingssvc.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	user, avatarURL, err := h.service.Profile(r.Context(), identity)
	if err != nil {
		handleSettingsError(w, err)
		return
	}
	httperrors.OK(w, "profile", dto.ProfileResponse{
		User:      dto.NewUserResponse(user),
		AvatarURL: avatarURL,
	})
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), identity, settingssvc.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		handleSettingsError(w, err)
		return
	}
	httperrors.OK(w, "profile updated", dto.NewUserResponse(user))
}

func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), identity, req.CurrentPassword, req.Password); err != nil {
		handleSettingsError(w, err)
		return
	}
	httperrors.OK(w, "password changed", nil)
}

func (h *SettingsHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarUploadBytes); err != nil {
		writeBadRequest(w, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeValidation(w, map[string]string{"avatar": "is required"})
		return
	}
	defer file.Close()

	url, err := h.service.UploadAvatar(r.Context(), identity, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		handleSettingsError(w, err)
		return
	}
	httperrors.OK(w, "avatar uploaded", dto.AvatarResponse{AvatarURL: url})
}

func handleSettingsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, settingssvc.ErrWrongPassword):
		writeValidation(w, map[string]string{"current_password": "is wrong"})
	case errors.Is(err, settingssvc.ErrEmailTaken):
		writeValidation(w, map[string]string{"email": "is already registered"})
	case errors.Is(err, settingssvc.ErrValidation):
		writeValidation(w, map[string]string{"request": "is invalid"})
	case errors.Is(err, settingssvc.ErrNotFound):
		writeNotFound(w, "user not found")
	default:
		writeInternal(w, "internal server error")
	}
}
