// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/sitegraph/internal/platform/apperr"
	"github.com/taibuivan/sitegraph/internal/platform/constants"
	"github.com/taibuivan/sitegraph/internal/platform/ctxutil"
	"github.com/taibuivan/sitegraph/internal/platform/respond"
)

// # Rate Limiting

// Limiter decides whether the client identified by key may proceed.
//
// retryAfter is only meaningful when allowed is false.
type Limiter interface {
	Allow(context context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit rejects requests once the client IP exhausts its quota.
//
// Limiter errors fail open: the request is served and the error is logged.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Identify the client by their IP address
			clientIP := RealIP(request)

			allowed, retryAfter, err := limiter.Allow(request.Context(), clientIP)
			if err != nil {
				ctxutil.GetLogger(request.Context()).Warn("rate_limiter_unavailable", slog.Any("error", err))
				next.ServeHTTP(writer, request)
				return
			}

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				writer.Header().Set("Retry-After", strconv.Itoa(seconds))
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-process token bucket per client key.
type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient

	limit rate.Limit
	burst int
	now   func() time.Time
}

// NewMemoryLimiter allows requests per window with a burst of the same size.
//
// A background goroutine evicts idle clients until context is cancelled.
func NewMemoryLimiter(context context.Context, requests int, window time.Duration) *MemoryLimiter {
	if requests < 1 {
		requests = constants.DefaultRateLimitBurst
	}

	limiter := &MemoryLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		now:     time.Now,
	}

	// Start a background cleanup routine that respects context cancellation
	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				limiter.evictIdle()
			case <-context.Done():
				// Stop the goroutine when the application shuts down
				return
			}
		}
	}()

	return limiter
}

// Allow implements [Limiter].
func (limiter *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	currentTime := limiter.now()
	clientInfo, found := limiter.clients[key]

	// Initialize a new limiter if this is a fresh IP
	if !found {
		clientInfo = &rateLimitClient{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[key] = clientInfo
	}

	// Update the activity timestamp
	clientInfo.lastSeen = currentTime

	reservation := clientInfo.limiter.ReserveN(currentTime, 1)
	if delay := reservation.DelayFrom(currentTime); delay > 0 {
		reservation.CancelAt(currentTime)
		return false, delay, nil
	}

	return true, 0, nil
}

func (limiter *MemoryLimiter) evictIdle() {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for ip, clientInfo := range limiter.clients {
		if limiter.now().Sub(clientInfo.lastSeen) > constants.RateLimitClientTTL {
			delete(limiter.clients, ip)
		}
	}
}
