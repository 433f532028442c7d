package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/foodieshare/foodieshare-backend/pkg/clientip"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 120
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked
	BlockedIPDuration = 15 * time.Minute
)

// RateLimiter is a fixed-window per-IP limiter shared by all API instances
// through Redis. An IP that exceeds the window is blocked for BlockFor.
// Redis errors let the request through.
type RateLimiter struct {
	client   redis.Cmdable
	Window   time.Duration
	Max      int
	BlockFor time.Duration
	logger   *slog.Logger
}

func NewRateLimiter(client redis.Cmdable, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		client:   client,
		Window:   RateLimitWindow,
		Max:      RateLimitMaxRequests,
		BlockFor: BlockedIPDuration,
		logger:   logger,
	}
}

// Middleware provides rate limiting with IP blocking
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l == nil || l.client == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ipAddress := clientip.RealClientIP(r)
		blockedKey := BlockedIPKeyPrefix + ipAddress

		isBlocked, err := l.client.Exists(ctx, blockedKey).Result()
		if err == nil && isBlocked > 0 {
			writeJSONError(w, http.StatusTooManyRequests, "Your IP has been temporarily blocked due to excessive requests. Please try again later.")
			return
		}

		rateLimitKey := RateLimitKeyPrefix + ipAddress

		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		_, err = l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, rateLimitKey)
			ttl = pipe.TTL(ctx, rateLimitKey)
			return nil
		})
		if err != nil {
			l.logger.Warn("rate limiter unavailable, allowing request", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		// A counter without expiry is either new or lost its EXPIRE; either
		// way the window starts now, otherwise the IP would stay counted forever.
		if ttl.Val() < 0 {
			if err := l.client.Expire(ctx, rateLimitKey, l.Window).Err(); err != nil {
				l.logger.Warn("failed to set rate limit window, retrying on next request", "ip", ipAddress, "error", err)
			}
		}
		count := int(incr.Val())

		if count > l.Max {
			if err := l.client.Set(ctx, blockedKey, "1", l.BlockFor).Err(); err != nil {
				l.logger.Warn("failed to block ip", "ip", ipAddress, "error", err)
			}
			l.logger.Warn("rate limit exceeded", "ip", ipAddress, "count", count)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(l.BlockFor.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(fmt.Sprintf(`{"success":false,"message":"Rate limit exceeded. Your IP has been temporarily blocked. Please try again later.","retry_after":%d}`, int(l.BlockFor.Seconds()))))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Max))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(l.Max-count))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(l.Window).Unix(), 10))

		next.ServeHTTP(w, r)
	})
}
