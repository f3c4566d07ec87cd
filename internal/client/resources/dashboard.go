package resources

import (
	"context"
	"net/http"

	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
)

type DashboardClient struct {
	gw *gateway.Gateway
}

func NewDashboardClient(gw *gateway.Gateway) *DashboardClient {
	return &DashboardClient{gw: gw}
}

func (c *DashboardClient) Summary(ctx context.Context) (dto.DashboardResponse, error) {
	var out dto.DashboardResponse
	err := c.gw.Do(ctx, http.MethodGet, "/dashboard", nil, &out)
	return out, err
}
