// AngelaMos | 2026
// denylist.go

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storedeck/storefront/internal/core"
)

// Denylist records revoked token ids until the token would have expired
// anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

func (d *RedisDenylist) key(tokenID string) string {
	return core.RedisKey("session", "revoked", tokenID)
}

func (d *RedisDenylist) Revoke(
	ctx context.Context,
	tokenID string,
	ttl time.Duration,
) error {
	if tokenID == "" {
		return fmt.Errorf("revoke: missing token id")
	}
	if ttl <= 0 {
		return nil
	}

	if err := d.client.Set(ctx, d.key(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	return nil
}

func (d *RedisDenylist) IsRevoked(
	ctx context.Context,
	tokenID string,
) (bool, error) {
	err := d.client.Get(ctx, d.key(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked: %w", err)
	}
	return true, nil
}
