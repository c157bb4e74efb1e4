package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds login throttle tuning parameters.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// LoginLimiter throttles failed login attempts per email+IP pair using Redis
// fixed-window counters. Successful logins clear the counter, so only
// credential-stuffing patterns accumulate.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config Config
}

// NewLoginLimiter creates a limiter backed by the given Redis client.
func NewLoginLimiter(redisClient redis.UniversalClient, cfg Config) *LoginLimiter {
	return &LoginLimiter{
		redis:  redisClient,
		config: cfg,
	}
}

// Check reports whether the email+IP pair is within the attempt budget.
// Returns ErrRateLimited when exhausted.
func (l *LoginLimiter) Check(ctx context.Context, email, ip string) error {
	count, err := l.redis.Get(ctx, loginKey(email, ip)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	return nil
}

// RecordFailure records a failed login attempt for the email+IP pair.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email, ip string) error {
	key := loginKey(email, ip)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: set TTL only for the first hit in the window.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return nil
}

// Reset clears the failure counter for the email+IP pair after a successful
// login.
func (l *LoginLimiter) Reset(ctx context.Context, email, ip string) error {
	if err := l.redis.Del(ctx, loginKey(email, ip)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func loginKey(email, ip string) string {
	return "login_fail:" + email + ":" + ip
}
