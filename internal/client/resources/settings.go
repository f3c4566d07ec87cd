package resources

import (
	"context"
	"net/http"

	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
)

type SettingsClient struct {
	gw *gateway.Gateway
}

func NewSettingsClient(gw *gateway.Gateway) *SettingsClient {
	return &SettingsClient{gw: gw}
}

func (c *SettingsClient) Profile(ctx context.Context) (dto.ProfileResponse, error) {
	var out dto.ProfileResponse
	err := c.gw.Do(ctx, http.MethodGet, "/settings/profile", nil, &out)
	return out, err
}

func (c *SettingsClient) UpdateProfile(ctx context.Context, req dto.UpdateProfileRequest) (dto.UserResponse, error) {
	var out dto.UserResponse
	err := c.gw.Do(ctx, http.MethodPut, "/settings/profile", req, &out)
	return out, err
}

func (c *SettingsClient) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	return c.gw.Do(ctx, http.MethodPut, "/settings/password", req, nil)
}
