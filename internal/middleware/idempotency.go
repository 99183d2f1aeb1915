package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// IdempotencyHeader is the standard HTTP header for idempotency keys.
	IdempotencyHeader = "Idempotency-Key"

	// idempotencyCacheTTL defines how long responses are replayable.
	idempotencyCacheTTL = 24 * time.Hour

	// lockTimeout prevents indefinite locks if a request crashes.
	lockTimeout = 10 * time.Second

	cachePrefix = "idempotency:"
	lockPrefix  = "lock:"
)

// IdempotencyCache is the small cache surface the middleware needs.
// Backed by Redis in production and by an in-memory fake in tests.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisCache implements IdempotencyCache over a Redis client.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a Redis client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *RedisCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, key, value, ttl).Result()
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// responseRecorder captures the response for caching while writing it
// through to the client.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency returns a middleware that makes money-moving POSTs safely
// repeatable: a request carrying an Idempotency-Key either replays the
// cached response of a previous completion, is rejected while an
// identical request is in flight, or runs and has its successful
// response cached. Requests without the header pass through untouched.
func Idempotency(cache IdempotencyCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			cacheKey := cachePrefix + key
			lockKey := lockPrefix + key

			cached, hit, err := cache.Get(ctx, cacheKey)
			if err != nil {
				slog.Error("Idempotency cache lookup failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if hit {
				slog.Debug("Idempotency cache hit", "key", key)
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Idempotency-Hit", "true")
				w.Write([]byte(cached))
				return
			}

			acquired, err := cache.SetNX(ctx, lockKey, "processing", lockTimeout)
			if err != nil {
				slog.Error("Idempotency lock acquisition failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if !acquired {
				slog.Warn("Concurrent request with same idempotency key", "key", key)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]string{
					"message": "failed",
					"data":    "a request with this idempotency key is currently being processed",
				})
				return
			}
			defer func() {
				if err := cache.Del(ctx, lockKey); err != nil {
					slog.Error("Failed to release idempotency lock", "key", key, "error", err)
				}
			}()

			recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)

			// Only completed operations are replayable; failures may be
			// retried with the same key.
			if recorder.status >= 200 && recorder.status < 300 {
				if err := cache.Set(ctx, cacheKey, recorder.body.String(), idempotencyCacheTTL); err != nil {
					slog.Error("Failed to cache idempotent response", "key", key, "error", err)
				}
			}
		})
	}
}
