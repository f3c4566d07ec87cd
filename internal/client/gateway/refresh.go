package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/morlov/merchant-admin/internal/client/session"
	"github.com/morlov/merchant-admin/internal/domain/enums"
)

// continuation is one request parked on the refresh outcome. Exactly one of
// replay or fail runs, once.
type continuation struct {
	replay func(accessToken string)
	fail   func(err error)
}

type refreshResult struct {
	identity     session.Identity
	accessToken  string
	refreshToken string
}

type refreshFunc func(ctx context.Context, refreshToken string) (refreshResult, error)

// coordinator single-flights the token refresh. The first 401 while idle
// starts the refresh and heads the queue; 401s arriving during the flight
// enqueue behind it. On success the queued requests replay in FIFO order with
// the new token; on failure the session clears once and every continuation
// is rejected. The queue is detached under the lock before draining, so a
// late continuation can never join a batch that has begun draining — it
// starts a new cycle instead.
type coordinator struct {
	mu         sync.Mutex
	refreshing bool
	queue      []continuation

	session   *session.Store
	refresh   refreshFunc
	onFailure func(reason RedirectReason)
}

func newCoordinator(store *session.Store, refresh refreshFunc, onFailure func(RedirectReason)) *coordinator {
	return &coordinator{
		session:   store,
		refresh:   refresh,
		onFailure: onFailure,
	}
}

func (c *coordinator) enqueue(cont continuation) {
	c.mu.Lock()
	c.queue = append(c.queue, cont)
	if c.refreshing {
		c.mu.Unlock()
		return
	}
	c.refreshing = true
	c.mu.Unlock()

	go c.run()
}

func (c *coordinator) run() {
	refreshToken := c.session.RefreshToken()
	if refreshToken == "" {
		c.fail(ReasonNotLoggedIn, fmt.Errorf("%w: no refresh token", ErrAuthentication))
		return
	}

	result, err := c.refresh(context.Background(), refreshToken)
	if err != nil {
		c.fail(ReasonSessionExpired, fmt.Errorf("%w: refresh rejected: %v", ErrAuthentication, err))
		return
	}

	if err := c.session.Commit(result.identity, result.accessToken, result.refreshToken); err != nil {
		c.fail(ReasonSessionExpired, fmt.Errorf("%w: commit refreshed session: %v", ErrAuthentication, err))
		return
	}

	for _, cont := range c.detach() {
		cont.replay(result.accessToken)
	}
}

func (c *coordinator) fail(reason RedirectReason, err error) {
	// Clear once per failed cycle, before rejecting the queue, so every
	// rejected caller already observes the absent session.
	_ = c.session.Clear()
	if c.onFailure != nil {
		c.onFailure(reason)
	}
	for _, cont := range c.detach() {
		cont.fail(err)
	}
}

// detach atomically takes ownership of the queue and returns the coordinator
// to idle.
func (c *coordinator) detach() []continuation {
	c.mu.Lock()
	queue := c.queue
	c.queue = nil
	c.refreshing = false
	c.mu.Unlock()
	return queue
}

func roleFromWire(raw string) enums.Role {
	if role, ok := enums.ParseRole(raw); ok {
		return role
	}
	return enums.Role(raw)
}
