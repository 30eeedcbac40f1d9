package queue

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"reservationapi/storage/redis"
)

const (
	messageProcessedPrefix = "mq:processed"
	processingTTL          = 10 * time.Minute
	processedTTL           = 48 * time.Hour
)

// Deduper 消费端幂等，防止重投的消息重复发送
type Deduper interface {
	// TryMark 首次处理返回 true
	TryMark(ctx context.Context, messageID string) (bool, error)
	MarkDone(ctx context.Context, messageID string) error
	Unmark(ctx context.Context, messageID string) error
}

// RedisDeduper 用 SETNX 标记消息，处理完成后延长 TTL
type RedisDeduper struct {
	client redislib.Cmdable
}

func NewRedisDeduper(client redislib.Cmdable) *RedisDeduper {
	return &RedisDeduper{client: client}
}

func (d *RedisDeduper) TryMark(ctx context.Context, messageID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, redis.Key(messageProcessedPrefix, messageID), "processing", processingTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark message as processing: %w", err)
	}
	return ok, nil
}

func (d *RedisDeduper) MarkDone(ctx context.Context, messageID string) error {
	return d.client.Set(ctx, redis.Key(messageProcessedPrefix, messageID), "done", processedTTL).Err()
}

func (d *RedisDeduper) Unmark(ctx context.Context, messageID string) error {
	return d.client.Del(ctx, redis.Key(messageProcessedPrefix, messageID)).Err()
}

// noopDeduper 未启用 Redis 时使用，每条消息都处理
type noopDeduper struct{}

func (noopDeduper) TryMark(context.Context, string) (bool, error) { return true, nil }
func (noopDeduper) MarkDone(context.Context, string) error       { return nil }
func (noopDeduper) Unmark(context.Context, string) error         { return nil }
