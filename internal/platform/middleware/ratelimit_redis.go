// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	requests int64
	window   time.Duration
}

// NewRedisLimiter allows requests per window and client key.
func NewRedisLimiter(client *redis.Client, prefix string, requests int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:   client,
		prefix:   prefix,
		requests: int64(requests),
		window:   window,
	}
}

// Allow implements [Limiter].
//
// The window starts with the first request of the client: the expiry is only
// set while the key has none.
func (limiter *RedisLimiter) Allow(context context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("%s:%s", limiter.prefix, key)

	pipe := limiter.client.TxPipeline()
	incr := pipe.Incr(context, redisKey)
	ttl := pipe.PTTL(context, redisKey)

	if _, err := pipe.Exec(context); err != nil {
		return true, 0, fmt.Errorf("ratelimit: redis error: %w", err)
	}

	if ttl.Val() < 0 {
		if err := limiter.client.PExpire(context, redisKey, limiter.window).Err(); err != nil {
			return true, 0, fmt.Errorf("ratelimit: redis error: %w", err)
		}
	}

	if incr.Val() <= limiter.requests {
		return true, 0, nil
	}

	retryAfter := ttl.Val()
	if retryAfter <= 0 {
		retryAfter = limiter.window
	}
	return false, retryAfter, nil
}
