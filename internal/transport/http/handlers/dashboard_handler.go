package handlers

import (
	"net/http"

	dashboardsvc "github.com/morlov/merchant-admin/internal/services/dashboard"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
	httperrors "github.com/morlov/merchant-admin/internal/transport/http/errors"
)

type DashboardHandler struct {
	service *dashboardsvc.Service
}

func NewDashboardHandler(service *dashboardsvc.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Summary(r.Context(), identity)
	if err != nil {
		writeInternal(w, "internal server error")
		return
	}
	httperrors.OK(w, "dashboard", dto.NewDashboardResponse(summary))
}
