package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hbnb/marketplace/internal/core/ports"
)

const (
	defaultMaxAttempts = 5
	defaultWindow      = 15 * time.Minute
)

// LoginGuard counts failed logins per identifier in Redis.
// Key format: login:fail:<identifier>
//
// The counter expires Window after the first failure, so an identifier is
// locked from the MaxAttempts-th failure until the window closes.
type LoginGuard struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

var _ ports.LoginGuard = (*LoginGuard)(nil)

// NewLoginGuard wraps client. Non-positive limits fall back to 5 attempts in
// 15 minutes.
func NewLoginGuard(client redis.Cmdable, maxAttempts int, window time.Duration) *LoginGuard {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &LoginGuard{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Locked reports whether identifier has reached the failure limit.
func (g *LoginGuard) Locked(ctx context.Context, identifier string) (bool, error) {
	n, err := g.client.Get(ctx, g.key(identifier)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login guard check: %w", err)
	}
	return n >= g.maxAttempts, nil
}

// Fail records one failed attempt. The expiry is only set by the first
// failure of a window.
func (g *LoginGuard) Fail(ctx context.Context, identifier string) error {
	key := g.key(identifier)
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, g.window)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login guard record: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, identifier string) error {
	if err := g.client.Del(ctx, g.key(identifier)).Err(); err != nil {
		return fmt.Errorf("login guard reset: %w", err)
	}
	return nil
}

func (g *LoginGuard) key(identifier string) string {
	return "login:fail:" + identifier
}
