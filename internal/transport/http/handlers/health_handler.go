package handlers

import (
	"net/http"

	httperrors "github.com/morlov/merchant-admin/internal/transport/http/errors"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	httperrors.OK(w, "ok", nil)
}
