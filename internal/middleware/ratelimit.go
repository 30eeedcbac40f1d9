package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"reservationapi/pkg/errors"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/response"
	"reservationapi/storage/redis"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 时间窗口（秒）
	Window int
	// 时间窗口内最大请求数
	MaxRequests int
	// 限流键前缀
	KeyPrefix string
}

// DefaultRateLimitConfig 默认按客户端 IP 每分钟 120 次
var DefaultRateLimitConfig = RateLimitConfig{
	Window:      60,
	MaxRequests: 120,
	KeyPrefix:   "rate:limit",
}

// RateLimiter 基于 Redis zset 的滑动窗口限流器
type RateLimiter struct {
	client redislib.Cmdable
	config RateLimitConfig
	now    func() time.Time
}

func NewRateLimiter(client redislib.Cmdable, config RateLimitConfig) *RateLimiter {
	if config.Window <= 0 {
		config.Window = DefaultRateLimitConfig.Window
	}
	if config.MaxRequests <= 0 {
		config.MaxRequests = DefaultRateLimitConfig.MaxRequests
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRateLimitConfig.KeyPrefix
	}
	return &RateLimiter{client: client, config: config, now: time.Now}
}

func (rl *RateLimiter) key(c *app.RequestContext) string {
	return redis.Key(rl.config.KeyPrefix, "ip", c.ClientIP())
}

// Allow 返回是否放行以及窗口内已有的请求数
func (rl *RateLimiter) Allow(ctx context.Context, c *app.RequestContext) (bool, int, error) {
	key := rl.key(c)
	now := rl.now()
	windowStart := now.Add(-time.Duration(rl.config.Window) * time.Second)

	pipe := rl.client.Pipeline()
	// 先清掉窗口之外的记录，再记入本次请求
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	// 同一纳秒内的并发请求也要各占一条，member 带随机后缀
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString(),
	})
	zcard := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, time.Duration(rl.config.Window+10)*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	count := int(zcard.Val())
	return count <= rl.config.MaxRequests, count, nil
}

// RateLimitMiddleware 超出限制返回 429，Redis 故障时放行
func RateLimitMiddleware(client redislib.Cmdable, config RateLimitConfig) app.HandlerFunc {
	return rateLimitHandler(NewRateLimiter(client, config))
}

func rateLimitHandler(limiter *RateLimiter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		allowed, count, err := limiter.Allow(ctx, c)
		if err != nil {
			logger.Logger.Warn("Rate limit check failed, letting request through",
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			c.Next(ctx)
			return
		}

		remaining := limiter.config.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.config.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Duration(limiter.config.Window)*time.Second).Unix(), 10))

		if !allowed {
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}
