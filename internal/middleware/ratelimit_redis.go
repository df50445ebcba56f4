package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter is a fixed-window counter in Redis, shared by every replica.
type RateLimiter struct {
	Redis  *redis.Client
	Prefix string
	Limit  int // requests
	Window time.Duration
	log    *zap.Logger
}

func NewRateLimiter(r *redis.Client, prefix string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{Redis: r, Prefix: prefix, Limit: limit, Window: window, log: logger}
}

func (r *RateLimiter) MiddlewareByKey(keyFunc func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFunc(c)
		if key == "" {
			return c.Next()
		}
		ctx := c.UserContext()
		redisKey := fmt.Sprintf("%s:%s", r.Prefix, key)
		count, err := r.hit(ctx, redisKey)
		if err != nil {
			r.log.Error("rate limiter error", zap.String("key", redisKey), zap.Error(err))
			return utils.JSONError(c, fiber.StatusInternalServerError, "rate limiter error")
		}
		if count > int64(r.Limit) {
			return utils.JSONError(c, fiber.StatusTooManyRequests, "rate limit exceeded")
		}
		return c.Next()
	}
}

// hit counts one request and starts the window on the first one. Both
// commands run in one MULTI/EXEC so a counter never outlives its window.
// ExpireNX needs Redis 7 or later.
func (r *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.Redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, r.Window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// PerUser limits authenticated requests by username.
func (r *RateLimiter) PerUser() fiber.Handler {
	return r.MiddlewareByKey(Username)
}
