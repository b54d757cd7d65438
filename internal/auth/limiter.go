// Copyright (c) 2026 Arcade. All rights reserved.
// Author: platform@arcade.gg

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arcadehq/arcade/internal/platform/apperr"
	"github.com/arcadehq/arcade/internal/platform/constants"
)

// AttemptLimiter throttles failed login attempts per identifier+IP.
//
// # Why an interface?
//
// The service depends on the contract so tests can count attempts in memory
// without a Redis instance.
type AttemptLimiter interface {
	// Allow returns [apperr.RateLimited] when the failed-attempt budget for
	// the key is exhausted, nil otherwise.
	Allow(ctx context.Context, key string) error

	// Fail records one failed attempt against the key.
	Fail(ctx context.Context, key string) error

	// Reset clears the key's failed-attempt count after a successful login.
	Reset(ctx context.Context, key string) error
}

// RedisAttemptLimiter implements [AttemptLimiter] on Redis with a fixed
// window per key.
//
// # Availability
//
// The limiter fails OPEN: if Redis is unavailable, logins proceed without
// throttling rather than locking every user out. The degradation is logged.
type RedisAttemptLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	log    *slog.Logger
}

// NewRedisAttemptLimiter constructs a limiter with the platform defaults.
func NewRedisAttemptLimiter(client *redis.Client, log *slog.Logger) *RedisAttemptLimiter {
	return &RedisAttemptLimiter{
		client: client,
		limit:  constants.LoginAttemptLimit,
		window: constants.LoginAttemptWindow,
		log:    log,
	}
}

// Allow implements [AttemptLimiter].
func (limiter *RedisAttemptLimiter) Allow(ctx context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	count, err := limiter.client.Get(ctx, redisKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		limiter.log.WarnContext(ctx, "login_limiter_degraded", slog.Any("error", err))
		return nil
	}

	if count < limiter.limit {
		return nil
	}

	retryAfter, err := limiter.client.TTL(ctx, redisKey).Result()
	if err != nil || retryAfter < 0 {
		retryAfter = limiter.window
	}

	return apperr.RateLimited(int(retryAfter.Seconds()))
}

// Fail implements [AttemptLimiter].
func (limiter *RedisAttemptLimiter) Fail(ctx context.Context, key string) error {
	redisKey := constants.RedisPrefixLoginAttempts + key

	count, err := limiter.client.Incr(ctx, redisKey).Result()
	if err != nil {
		limiter.log.WarnContext(ctx, "login_limiter_degraded", slog.Any("error", err))
		return fmt.Errorf("auth: failed to record login attempt: %w", err)
	}

	// First failure in a fresh window starts the countdown.
	if count == 1 {
		if err := limiter.client.Expire(ctx, redisKey, limiter.window).Err(); err != nil {
			return fmt.Errorf("auth: failed to set attempt window: %w", err)
		}
	}

	return nil
}

// Reset implements [AttemptLimiter].
func (limiter *RedisAttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := limiter.client.Del(ctx, constants.RedisPrefixLoginAttempts+key).Err(); err != nil {
		return fmt.Errorf("auth: failed to reset login attempts: %w", err)
	}
	return nil
}
