package resources

import (
	"context"
	"net/http"

	"github.com/morlov/merchant-admin/internal/client/gateway"
	"github.com/morlov/merchant-admin/internal/client/session"
	"github.com/morlov/merchant-admin/internal/domain/enums"
	"github.com/morlov/merchant-admin/internal/transport/http/dto"
)

// AuthClient drives the authentication endpoints. All of its calls bypass
// the refresh path: a 401 here is an inline form error for the caller, and
// must never clear an unrelated session.
type AuthClient struct {
	gw      *gateway.Gateway
	session *session.Store
}

func NewAuthClient(gw *gateway.Gateway, store *session.Store) *AuthClient {
	return &AuthClient{gw: gw, session: store}
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (session.Identity, error) {
	var res dto.AuthTokensResponse
	err := c.gw.DoAuth(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{
		Email:    email,
		Password: password,
	}, &res)
	if err != nil {
		return session.Identity{}, err
	}
	return c.commit(res)
}

func (c *AuthClient) Register(ctx context.Context, req dto.RegisterRequest) (session.Identity, error) {
	var res dto.AuthTokensResponse
	if err := c.gw.DoAuth(ctx, http.MethodPost, "/auth/register", req, &res); err != nil {
		return session.Identity{}, err
	}
	return c.commit(res)
}

// Logout revokes the refresh token best-effort and always clears the local
// session, server reachable or not.
func (c *AuthClient) Logout(ctx context.Context) error {
	refreshToken := c.session.RefreshToken()
	if refreshToken != "" {
		_ = c.gw.DoAuth(ctx, http.MethodPost, "/auth/logout", dto.LogoutRequest{
			RefreshToken: refreshToken,
		}, nil)
	}
	return c.session.Clear()
}

// ForgotPassword requests a reset. An empty token in the response means the
// email is unknown or the server withholds tokens outside dev; neither is an
// error.
func (c *AuthClient) ForgotPassword(ctx context.Context, email string) (dto.ForgotPasswordResponse, error) {
	var res dto.ForgotPasswordResponse
	err := c.gw.DoAuth(ctx, http.MethodPost, "/auth/forgot-password", dto.ForgotPasswordRequest{
		Email: email,
	}, &res)
	return res, err
}

func (c *AuthClient) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	return c.gw.DoAuth(ctx, http.MethodPost, "/auth/reset-password", req, nil)
}

func (c *AuthClient) commit(res dto.AuthTokensResponse) (session.Identity, error) {
	identity := session.Identity{
		ID:       res.User.ID,
		PublicID: res.User.PublicID,
		Name:     res.User.Name,
		Email:    res.User.Email,
		Role:     parseRole(res.User.Role),
	}
	if err := c.session.Commit(identity, res.Token, res.RefreshToken); err != nil {
		return session.Identity{}, err
	}
	return identity, nil
}

func parseRole(raw string) enums.Role {
	if role, ok := enums.ParseRole(raw); ok {
		return role
	}
	return enums.Role(raw)
}
