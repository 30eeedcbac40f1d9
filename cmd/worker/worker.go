package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"reservationapi/config"
	"reservationapi/internal/queue"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/mailer"
	"reservationapi/pkg/sms"
	"reservationapi/storage/mq"
	"reservationapi/storage/redis"
)

// worker 消费通知队列，把消息交给邮件和短信发送端
func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	cfg := config.Cfg
	if !cfg.UseRabbitMQ() {
		logger.Logger.Fatal("Worker requires NOTIFY_BROKER=rabbitmq",
			zap.String("notify_broker", cfg.NotifyBroker),
		)
	}

	// worker 不访问数据库，只连 MQ 和可选的 Redis
	if err := mq.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := mq.Close(context.Background()); err != nil {
			logger.Logger.Error("Failed to close RabbitMQ", zap.Error(err))
		}
	}()

	var deduper queue.Deduper
	if err := redis.Init(); err != nil {
		logger.Logger.Warn("Redis unavailable, message deduplication disabled", zap.Error(err))
	} else if client := redis.Client(); client != nil {
		deduper = queue.NewRedisDeduper(client)
		defer redis.Close(context.Background())
	}

	h := queue.NewNotificationHandler(mailer.NewLogSender(cfg.EmailFrom), sms.NewLogClient(), deduper)

	logger.Logger.Info("Worker service starting",
		zap.String("service", cfg.ServiceName+"-worker"),
		zap.String("queue", cfg.NotifyQueue),
		zap.String("environment", cfg.Environment),
	)

	if err := queue.StartNotificationConsumer(ctx, cfg.NotifyQueue, cfg.ServiceName, h); err != nil {
		logger.Logger.Error("Notification consumer exited", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
