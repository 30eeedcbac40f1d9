package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"reservationapi/pkg/logger"
	"reservationapi/storage/database"
	"reservationapi/storage/mq"
	"reservationapi/storage/redis"
)

const closeTimeout = 15 * time.Second

// Close 按 MQ -> Redis -> Database 的顺序关闭连接，共用 15 秒超时
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	closers := []struct {
		name  string
		close func(context.Context) error
	}{
		{"message queue", mq.Close},
		{"redis", redis.Close},
		{"database", database.Close},
	}

	for _, c := range closers {
		if err := c.close(ctx); err != nil {
			logger.Logger.Error("Failed to close "+c.name, zap.Error(err))
			continue
		}
		logger.Logger.Info("Closed " + c.name)
	}

	logger.Logger.Info("All storage connections closed")
}
