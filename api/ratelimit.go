package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const verifyLimitPrefix = "verify:limit:"

// Limiter counts hits against a key inside a window
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisLimiter is a fixed window counter kept in redis so every instance
// shares the same counters
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter connects to url and checks the connection with a ping
func NewRedisLimiter(url string, limit int, window time.Duration) (*RedisLimiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zap.S().Infow("redis connected", "addr", opts.Addr)
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}, nil
}

// Allow increments the counter for key and reports whether it is still within
// the limit. The window is set in the same transaction as the first increment.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, verifyLimitPrefix+key)
		pipe.ExpireNX(ctx, verifyLimitPrefix+key, l.window)
		return nil
	})
	if err != nil {
		return false, err
	}
	return incr.Val() <= int64(l.limit), nil
}

// Close closes the redis connection
func (l *RedisLimiter) Close() error {
	return l.rdb.Close()
}

// RateLimit throttles requests per authenticated caller. A nil limiter or a
// limiter error lets the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			agent, ok := AgentFromContext(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.Allow(r.Context(), agent.ID.Hex())
			if err != nil {
				zap.S().Warnw("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				GetMetrics().RecordRejection(RejectionThrottled)
				zap.S().Warnw("verification throttled",
					"agent", agent.ID.Hex(),
					"path", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": "too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
