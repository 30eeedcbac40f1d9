package redis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"reservationapi/config"
	redisotel "reservationapi/pkg/redis"
)

var (
	client *redis.Client
	once   sync.Once
	err    error
)

// Init 连接 Redis，REDIS_ENABLED=false 时什么都不做
func Init() error {
	if !config.Cfg.RedisEnabled {
		return nil
	}

	once.Do(func() {
		cfg := config.Cfg

		client = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			MinIdleConns: 5,
			MaxRetries:   3,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err = client.Ping(ctx).Err(); err != nil {
			return
		}

		redisotel.InstrumentRedisClient(client, cfg.ServiceName, cfg.RedisDB)
	})

	return err
}

// Client 未启用 Redis 时返回 nil
func Client() *redis.Client {
	return client
}

func Ping(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}

func Close(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Key 拼接带前缀的键，例如 rsv:rate:limit:ip:127.0.0.1
func Key(parts ...string) string {
	prefix := config.Cfg.RedisPrefix
	if prefix == "" {
		prefix = "rsv"
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	for _, part := range parts {
		if part == "" {
			continue
		}
		sb.WriteString(":")
		sb.WriteString(part)
	}
	return sb.String()
}
