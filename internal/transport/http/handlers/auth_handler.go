package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/pkg/validate"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
	httperrors "github.com/morlov/merchant-admin/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
	devEnv  bool
}

// NewAuthHandler builds the /auth surface. devEnv controls whether
// forgot-password may echo the reset token in the response body; production
// delivers it out of band only.
func NewAuthHandler(service *authsvc.Service, devEnv bool) *AuthHandler {
	return &AuthHandler{service: service, devEnv: devEnv}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.OK(w, "login successful", tokensResponse(res))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "auth service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	role, ok := enums.ParseRole(req.Role)
	if !ok {
		writeValidation(w, map[string]string{"role": "is invalid"})
		return
	}

	res, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Created(w, "registration successful", tokensResponse(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.OK(w, "token refreshed", tokensResponse(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "auth service is unavailable")
		return
	}

	var req dto.LogoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		writeInternal(w, "internal server error")
		return
	}
	httperrors.OK(w, "logged out", nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "auth service is unavailable")
		return
	}

	var req dto.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	res, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	// Identical body for known and unknown emails unless running in dev,
	// where the token is echoed for manual testing.
	body := dto.ForgotPasswordResponse{
		Note: "if the email is registered, a reset link has been sent",
	}
	if h.devEnv && res.Known {
		body.ResetToken = res.ResetToken
	}
	httperrors.OK(w, "reset requested", body)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "auth service is unavailable")
		return
	}

	var req dto.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email, req.Token, req.Password); err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.OK(w, "password reset", nil)
}

func tokensResponse(res authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		User: dto.AuthUserResponse{
			ID:       res.User.ID,
			PublicID: res.User.PublicID,
			Name:     res.User.Name,
			Email:    res.User.Email,
			Role:     string(res.User.Role),
		},
		Token:        res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "request validation failed")
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid email or password")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "authentication failed")
	case errors.Is(err, authsvc.ErrEmailTaken):
		writeValidation(w, map[string]string{"email": "is already registered"})
	default:
		writeInternal(w, "internal server error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// validateRequest writes the 422 response itself and reports whether the
// handler may proceed.
func validateRequest(w http.ResponseWriter, target any) bool {
	fields, err := validate.Struct(target)
	if err != nil {
		writeInternal(w, "internal server error")
		return false
	}
	if len(fields) > 0 {
		writeValidation(w, fields)
		return false
	}
	return true
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// paging reads and clamps the page/page_size query params so the response
// meta echoes the values the services actually used.
func paging(r *http.Request) (page, pageSize int) {
	page = queryInt(r, "page")
	if page < 1 {
		page = 1
	}
	pageSize = queryInt(r, "page_size")
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func writeBadRequest(w http.ResponseWriter, message string) {
	httperrors.Fail(w, http.StatusBadRequest, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	httperrors.Fail(w, http.StatusUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	httperrors.Fail(w, http.StatusForbidden, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	httperrors.Fail(w, http.StatusNotFound, message)
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	httperrors.FailFields(w, http.StatusUnprocessableEntity, "validation failed", fields)
}

func writeInternal(w http.ResponseWriter, message string) {
	httperrors.Fail(w, http.StatusInternalServerError, message)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
