package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/snowflake"
	"reservationapi/storage/mq"
)

// PublishFunc 发布一条消息，默认是 mq.PublishMessage
type PublishFunc func(ctx context.Context, exchange, routingKey, messageID string, body interface{}) error

// Producer 把通知投递到 RabbitMQ，由 worker 真正发送
type Producer struct {
	publish    PublishFunc
	exchange   string
	routingKey string
}

func NewProducer(exchange, routingKey string) *Producer {
	return NewProducerWithPublisher(exchange, routingKey, mq.PublishMessage)
}

func NewProducerWithPublisher(exchange, routingKey string, publish PublishFunc) *Producer {
	return &Producer{
		publish:    publish,
		exchange:   exchange,
		routingKey: routingKey,
	}
}

// PublishNotification MessageID 为空时生成 ntf_ 前缀的 snowflake id
func (p *Producer) PublishNotification(ctx context.Context, msg model.NotificationMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextMessageID("ntf")
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.Int64("reservation_id", msg.ReservationID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = id
	}
	if msg.CreatedAt == "" {
		msg.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := p.publish(ctx, p.exchange, p.routingKey, msg.MessageID, msg); err != nil {
		logger.Logger.Error("Failed to publish notification message",
			zap.String("message_id", msg.MessageID),
			zap.String("channel", string(msg.Channel)),
			zap.Int64("reservation_id", msg.ReservationID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published notification message",
		zap.String("message_id", msg.MessageID),
		zap.String("channel", string(msg.Channel)),
		zap.Int64("reservation_id", msg.ReservationID),
	)
	return nil
}

// EmailSender 实现 mailer.Sender，把邮件放进队列
type EmailSender struct {
	producer *Producer
}

func NewEmailSender(p *Producer) *EmailSender {
	return &EmailSender{producer: p}
}

func (s *EmailSender) Send(ctx context.Context, toEmail, toName, subject, text string) error {
	return s.producer.PublishNotification(ctx, model.NotificationMessage{
		Channel:       model.ChannelEmail,
		ReservationID: model.ReservationIDFromContext(ctx),
		Recipient:     toEmail,
		RecipientName: toName,
		Subject:       subject,
		Body:          text,
	})
}

// SMSSender 实现 sms.Client，把短信放进队列
type SMSSender struct {
	producer *Producer
}

func NewSMSSender(p *Producer) *SMSSender {
	return &SMSSender{producer: p}
}

func (s *SMSSender) SendSingle(ctx context.Context, phone, message string) error {
	return s.producer.PublishNotification(ctx, model.NotificationMessage{
		Channel:       model.ChannelSMS,
		ReservationID: model.ReservationIDFromContext(ctx),
		Recipient:     phone,
		Body:          message,
	})
}
