package handlers

import (
	"errors"
	"net/http"

	"github.com/morlov/merchant-admin/internal/domain/enums"
	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
	userssvc "github.com/morlov/merchant-admin/internal/services/users"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
	httperrors "github.com/morlov/merchant-admin/internal/transport/http/errors"
)

type UsersHandler struct {
	service *userssvc.Service
}

func NewUsersHandler(service *userssvc.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	page, pageSize := paging(r)
	users, total, err := h.service.List(r.Context(), identity, page, pageSize)
	if err != nil {
		handleUsersError(w, err)
		return
	}
	httperrors.OKMeta(w, "users", dto.NewUserListResponse(users), httperrors.Meta{
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}

	user, err := h.service.Get(r.Context(), identity, id)
	if err != nil {
		handleUsersError(w, err)
		return
	}
	httperrors.OK(w, "user", dto.NewUserResponse(user))
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	role, roleOK := enums.ParseRole(req.Role)
	if !roleOK {
		writeValidation(w, map[string]string{"role": "is invalid"})
		return
	}

	user, err := h.service.Create(r.Context(), identity, userssvc.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		handleUsersError(w, err)
		return
	}
	httperrors.Created(w, "user created", dto.NewUserResponse(user))
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}

	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	role, roleOK := enums.ParseRole(req.Role)
	if !roleOK {
		writeValidation(w, map[string]string{"role": "is invalid"})
		return
	}

	user, err := h.service.Update(r.Context(), identity, id, userssvc.UpdateInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  role,
	})
	if err != nil {
		handleUsersError(w, err)
		return
	}
	httperrors.OK(w, "user updated", dto.NewUserResponse(user))
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeBadRequest(w, "invalid user id")
		return
	}

	if err := h.service.Delete(r.Context(), identity, id); err != nil {
		handleUsersError(w, err)
		return
	}
	httperrors.OK(w, "user deleted", nil)
}

func handleUsersError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userssvc.ErrForbidden):
		writeForbidden(w, "you do not have permission to manage users")
	case errors.Is(err, userssvc.ErrNotFound):
		writeNotFound(w, "user not found")
	case errors.Is(err, userssvc.ErrEmailTaken):
		writeValidation(w, map[string]string{"email": "is already registered"})
	case errors.Is(err, userssvc.ErrValidation):
		writeValidation(w, map[string]string{"request": "is invalid"})
	default:
		writeInternal(w, "internal server error")
	}
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "authentication required")
		return authsvc.Identity{}, false
	}
	return identity, true
}
