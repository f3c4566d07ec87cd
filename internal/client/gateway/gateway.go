package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/morlov/merchant-admin/internal/client/session"
	"github.com/morlov/merchant-admin/internal/infra/httpclient"
)

// RedirectReason tells the shell why the gateway wants the login view.
type RedirectReason string

const (
	ReasonSessionExpired RedirectReason = "session_expired"
	ReasonNotLoggedIn    RedirectReason = "not_logged_in"
)

// ErrAuthentication marks a terminal authentication failure: the session has
// been cleared and the caller should send the user to the login view.
var ErrAuthentication = errors.New("authentication failed")

// APIError is a non-2xx response decoded from the server envelope. Fields
// carries the field->message map of a 422 response.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Gateway wraps outbound calls to the API: it attaches the bearer token read
// from the session store at call time and routes 401s on protected endpoints
// through the refresh coordinator. Timeouts and other transport failures are
// network errors and never enter the refresh path.
type Gateway struct {
	baseURL string
	http    *http.Client
	session *session.Store
	coord   *coordinator
	logger  *zap.Logger

	mu         sync.Mutex
	lastReason RedirectReason
	hasReason  bool
	onRedirect func(RedirectReason)
}

func New(cfg Config, store *session.Store, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gateway{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.New(cfg.Timeout),
		session: store,
		logger:  log,
	}
	g.coord = newCoordinator(store, g.refreshCall, g.recordRedirect)
	return g
}

// OnRedirect installs the shell's navigation hook. It fires once per
// irrecoverable 401 with a machine-readable reason.
func (g *Gateway) OnRedirect(fn func(RedirectReason)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onRedirect = fn
}

// LastRedirect reports the most recent redirect reason, if any.
func (g *Gateway) LastRedirect() (RedirectReason, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastReason, g.hasReason
}

// Do performs a refresh-protected call. A 401 hands the continuation to the
// coordinator; the replay runs at most once.
func (g *Gateway) Do(ctx context.Context, method, path string, body, out any) error {
	err := g.send(ctx, method, path, body, out, g.session.AccessToken())
	if !isUnauthorized(err) {
		return err
	}

	result := make(chan error, 1)
	g.coord.enqueue(continuation{
		replay: func(accessToken string) {
			replayErr := g.send(ctx, method, path, body, out, accessToken)
			if isUnauthorized(replayErr) {
				// A second 401 after a fresh token is terminal.
				replayErr = fmt.Errorf("%w: request unauthorized after refresh", ErrAuthentication)
			}
			result <- replayErr
		},
		fail: func(failErr error) {
			result <- failErr
		},
	})
	return <-result
}

// DoAuth performs a call against an authentication endpoint. A 401 here is an
// inline form error, never a refresh trigger or a session clear.
func (g *Gateway) DoAuth(ctx context.Context, method, path string, body, out any) error {
	return g.send(ctx, method, path, body, out, g.session.AccessToken())
}

func (g *Gateway) send(ctx context.Context, method, path string, body, out any, accessToken string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		g.logger.Debug("request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if len(data) > 0 {
		// A non-envelope body still maps onto the status code below.
		_ = json.Unmarshal(data, &env)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				return fmt.Errorf("decode response data: %w", err)
			}
		}
		return nil
	}

	g.logger.Debug("api error",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("message", env.Message),
	)
	return &APIError{Status: resp.StatusCode, Message: env.Message, Fields: env.Errors}
}

func (g *Gateway) refreshCall(ctx context.Context, refreshToken string) (refreshResult, error) {
	var data struct {
		User struct {
			ID       int64  `json:"id"`
			PublicID string `json:"public_id"`
			Name     string `json:"name"`
			Email    string `json:"email"`
			Role     string `json:"role"`
		} `json:"user"`
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}

	body := map[string]string{"refresh_token": refreshToken}
	if err := g.send(ctx, http.MethodPost, "/auth/refresh", body, &data, ""); err != nil {
		return refreshResult{}, err
	}
	return refreshResult{
		identity: session.Identity{
			ID:       data.User.ID,
			PublicID: data.User.PublicID,
			Name:     data.User.Name,
			Email:    data.User.Email,
			Role:     roleFromWire(data.User.Role),
		},
		accessToken:  data.Token,
		refreshToken: data.RefreshToken,
	}, nil
}

func (g *Gateway) recordRedirect(reason RedirectReason) {
	g.mu.Lock()
	g.lastReason = reason
	g.hasReason = true
	hook := g.onRedirect
	g.mu.Unlock()

	g.logger.Info("redirecting to login", zap.String("reason", string(reason)))
	if hook != nil {
		hook(reason)
	}
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
