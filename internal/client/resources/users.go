package resources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
)

type UsersClient struct {
	gw *gateway.Gateway
}

func NewUsersClient(gw *gateway.Gateway) *UsersClient {
	return &UsersClient{gw: gw}
}

func (c *UsersClient) List(ctx context.Context, page, pageSize int) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	err := c.gw.Do(ctx, http.MethodGet, "/users"+pageQuery(page, pageSize), nil, &out)
	return out, err
}

func (c *UsersClient) Get(ctx context.Context, id int64) (dto.UserResponse, error) {
	var out dto.UserResponse
	err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &out)
	return out, err
}

func (c *UsersClient) Create(ctx context.Context, req dto.CreateUserRequest) (dto.UserResponse, error) {
	var out dto.UserResponse
	err := c.gw.Do(ctx, http.MethodPost, "/users", req, &out)
	return out, err
}

func (c *UsersClient) Update(ctx context.Context, id int64, req dto.UpdateUserRequest) (dto.UserResponse, error) {
	var out dto.UserResponse
	err := c.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), req, &out)
	return out, err
}

func (c *UsersClient) Delete(ctx context.Context, id int64) error {
	return c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil)
}

func pageQuery(page, pageSize int) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
