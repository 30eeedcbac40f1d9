package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"reservationapi/config"
	"reservationapi/pkg/logger"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

// Init 连接 RabbitMQ 并声明通知用的 exchange 和 queue，NOTIFY_BROKER 不是 rabbitmq 时跳过
func Init() error {
	if !config.Cfg.UseRabbitMQ() {
		return nil
	}

	connOnce.Do(func() {
		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			connErr = fmt.Errorf("failed to dial rabbitmq: %w", connErr)
			return
		}

		connErr = declareTopology(config.Cfg.NotifyExchange, config.Cfg.NotifyQueue)
		if connErr != nil {
			return
		}

		logger.Logger.Info("RabbitMQ initialized",
			zap.String("exchange", config.Cfg.NotifyExchange),
			zap.String("queue", config.Cfg.NotifyQueue),
		)
	})

	return connErr
}

// declareTopology direct exchange，队列以队列名作为 routing key 绑定
func declareTopology(exchange, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}
	return nil
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	closePublisherChannel()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
