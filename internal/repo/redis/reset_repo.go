package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/morlov/merchant-admin/internal/services/auth"
)

const resetPrefix = "pwreset:"

// ResetRepo stores one-shot password reset tokens with a TTL. Issuing a new
// token for the same user replaces the previous one.
type ResetRepo struct {
	client *goredis.Client
}

func NewResetRepo(client *goredis.Client) *ResetRepo {
	return &ResetRepo{client: client}
}

func (r *ResetRepo) Store(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if token == "" || userID <= 0 || ttl <= 0 {
		return authsvc.ErrInvalidInput
	}
	if err := r.client.Set(ctx, resetKey(token), userID, ttl).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	return nil
}

func (r *ResetRepo) Consume(ctx context.Context, token string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}

	value, err := r.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if err == goredis.Nil {
			return 0, authsvc.ErrResetNotFound
		}
		return 0, fmt.Errorf("consume reset token: %w", err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || userID <= 0 {
		return 0, authsvc.ErrResetNotFound
	}
	return userID, nil
}

func resetKey(token string) string {
	return resetPrefix + token
}
