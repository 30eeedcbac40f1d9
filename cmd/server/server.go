package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"
	"go.uber.org/zap"

	appcfg "reservationapi/config"
	"reservationapi/internal/handler"
	"reservationapi/internal/middleware"
	"reservationapi/internal/queue"
	"reservationapi/internal/repository"
	"reservationapi/internal/router"
	"reservationapi/internal/seed"
	"reservationapi/internal/service"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/mailer"
	"reservationapi/pkg/otel"
	"reservationapi/pkg/sms"
	"reservationapi/pkg/snowflake"
	"reservationapi/storage"
	"reservationapi/storage/database"
	"reservationapi/storage/redis"
)

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

	cfg := appcfg.Cfg

	if cfg.OTelEnabled {
		shutdown, err := otel.InitOpenTelemetry(ctx, otel.Config{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Environment:    cfg.Environment,
			OTLPEndpoint:   cfg.OTelEndpoint,
			SampleRatio:    cfg.OTelSampleRatio,
		})
		if err != nil {
			logger.Logger.Warn("Failed to initialize OpenTelemetry, tracing disabled", zap.Error(err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Logger.Error("Failed to shutdown OpenTelemetry", zap.Error(err))
				}
			}()
		}
	}

	// 初始化存储层，退出时关闭外部连接
	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(cfg.SnowflakeMachineID, cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	db := database.DB()
	reservationRepo := repository.NewReservationRepository(db)
	contactMethodRepo := repository.NewContactMethodRepository(db)

	if cfg.SeedOnStartup {
		if _, err := seed.NewSeeder(reservationRepo, contactMethodRepo).Run(ctx); err != nil {
			logger.Logger.Error("Failed to seed sample data", zap.Error(err))
		}
	}

	emailSender, smsClient := notificationSenders(cfg)
	notifier := service.NewNotificationService(emailSender, smsClient)
	defer notifier.Close()

	checks := map[string]handler.HealthCheck{"db": database.Ping}
	if cfg.RedisEnabled {
		checks["redis"] = redis.Ping
	}

	deps := router.Dependencies{
		Reservations: handler.NewReservationHandler(
			service.NewReservationService(reservationRepo, contactMethodRepo),
			notifier,
		),
		Health: handler.NewHealthHandler(checks),
	}

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	opts := []config.Option{server.WithHostPorts(addr)}

	if cfg.OTelEnabled {
		tracerOpt, tracingMW := middleware.NewServerTracerConfig()
		opts = append(opts, tracerOpt)
		deps.Tracing = tracingMW
	}

	if cfg.RateLimitEnabled && redis.Client() != nil {
		deps.RateLimit = middleware.RateLimitMiddleware(redis.Client(), middleware.RateLimitConfig{
			Window:      cfg.RateLimitWindowSeconds,
			MaxRequests: cfg.RateLimitMaxRequests,
		})
	}

	logger.Logger.Info("Server starting",
		zap.String("service", cfg.ServiceName),
		zap.String("port", cfg.ServerPort),
		zap.String("environment", cfg.Environment),
		zap.String("notify_broker", cfg.NotifyBroker),
	)

	h := server.Default(opts...)
	router.Register(h, deps)

	// 优雅关闭：收到信号后停止接收请求
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Initiating graceful shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := h.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error("Failed to shutdown HTTP server", zap.Error(err))
		}
	}()

	logger.Logger.Info("HTTP server listening", zap.String("addr", addr))

	h.Spin()

	logger.Logger.Info("Server shutting down gracefully")
}

// notificationSenders NOTIFY_BROKER=rabbitmq 时投递到队列，否则直接打日志
func notificationSenders(cfg appcfg.Config) (mailer.Sender, sms.Client) {
	if cfg.UseRabbitMQ() {
		producer := queue.NewProducer(cfg.NotifyExchange, cfg.NotifyQueue)
		return queue.NewEmailSender(producer), queue.NewSMSSender(producer)
	}
	return mailer.NewLogSender(cfg.EmailFrom), sms.NewLogClient()
}
