package resources

import (
	"context"
	"fmt"
	"net/http"

	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
)

type MerchantsClient struct {
	gw *gateway.Gateway
}

func NewMerchantsClient(gw *gateway.Gateway) *MerchantsClient {
	return &MerchantsClient{gw: gw}
}

func (c *MerchantsClient) List(ctx context.Context, page, pageSize int) ([]dto.MerchantResponse, error) {
	var out []dto.MerchantResponse
	err := c.gw.Do(ctx, http.MethodGet, "/merchants"+pageQuery(page, pageSize), nil, &out)
	return out, err
}

func (c *MerchantsClient) Get(ctx context.Context, id int64) (dto.MerchantResponse, error) {
	var out dto.MerchantResponse
	err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/merchants/%d", id), nil, &out)
	return out, err
}

func (c *MerchantsClient) Create(ctx context.Context, req dto.CreateMerchantRequest) (dto.MerchantResponse, error) {
	var out dto.MerchantResponse
	err := c.gw.Do(ctx, http.MethodPost, "/merchants", req, &out)
	return out, err
}

func (c *MerchantsClient) Update(ctx context.Context, id int64, req dto.UpdateMerchantRequest) (dto.MerchantResponse, error) {
	var out dto.MerchantResponse
	err := c.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/merchants/%d", id), req, &out)
	return out, err
}

func (c *MerchantsClient) Delete(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/merchants/%d", id), nil, nil)
}
