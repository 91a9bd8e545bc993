package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

const (
	defaultRateLimit  = 5
	defaultRateWindow = 15 * time.Minute
	redisTimeout      = 500 * time.Millisecond
)

// RateLimitConfig bounds attempts per client IP and route.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RateLimiter counts attempts in Redis with INCR and starts the window with
// EXPIRE on the first attempt. A nil client disables the limiter and Redis
// errors let the request through.
func RateLimiter(rdb redis.Cmdable, cfg RateLimitConfig, log *zap.Logger) gin.HandlerFunc {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultRateLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultRateWindow
	}
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := rateLimitKey(c.FullPath(), c.ClientIP())
		allowed, err := checkRateLimit(c.Request.Context(), rdb, key, cfg)
		if err != nil {
			log.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			log.Info("rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("route", c.FullPath()))
			c.Header("Retry-After", fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			abort(c, http.StatusTooManyRequests, apperr.KindRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}

func rateLimitKey(route, ip string) string {
	return fmt.Sprintf("ratelimit:%s:%s", route, ip)
}

func checkRateLimit(ctx context.Context, rdb redis.Cmdable, key string, cfg RateLimitConfig) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return count <= int64(cfg.Limit), nil
}

// NewRedisClient parses a redis:// URL. An empty URL yields a nil client.
func NewRedisClient(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}
