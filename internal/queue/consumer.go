package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/mailer"
	"reservationapi/pkg/sms"
	"reservationapi/storage/mq"
)

// NotificationHandler 把队列里的通知交给真正的发送端
type NotificationHandler struct {
	email   mailer.Sender
	sms     sms.Client
	deduper Deduper
}

// NewNotificationHandler deduper 为 nil 时不做幂等检查
func NewNotificationHandler(email mailer.Sender, smsClient sms.Client, deduper Deduper) *NotificationHandler {
	if deduper == nil {
		deduper = noopDeduper{}
	}
	return &NotificationHandler{
		email:   email,
		sms:     smsClient,
		deduper: deduper,
	}
}

// Handle 解析失败的消息直接丢弃，发送失败返回错误让消息重新入队
func (h *NotificationHandler) Handle(ctx context.Context, body []byte) error {
	var msg model.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Logger.Error("Discarding malformed notification message", zap.Error(err))
		return nil
	}

	first, err := h.deduper.TryMark(ctx, msg.MessageID)
	if err != nil {
		// 幂等检查失败不阻塞投递，可能重复发送
		logger.Logger.Warn("Failed to check message processed status",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
	} else if !first {
		logger.Logger.Info("Message already processed, skipping",
			zap.String("message_id", msg.MessageID),
		)
		return nil
	}

	if err := h.dispatch(ctx, msg); err != nil {
		if uerr := h.deduper.Unmark(ctx, msg.MessageID); uerr != nil {
			logger.Logger.Warn("Failed to unmark message", zap.String("message_id", msg.MessageID), zap.Error(uerr))
		}
		return err
	}

	if err := h.deduper.MarkDone(ctx, msg.MessageID); err != nil {
		logger.Logger.Warn("Failed to mark message as processed",
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Notification delivered",
		zap.String("message_id", msg.MessageID),
		zap.String("channel", string(msg.Channel)),
		zap.Int64("reservation_id", msg.ReservationID),
	)
	return nil
}

func (h *NotificationHandler) dispatch(ctx context.Context, msg model.NotificationMessage) error {
	switch msg.Channel {
	case model.ChannelEmail:
		return h.email.Send(ctx, msg.Recipient, msg.RecipientName, msg.Subject, msg.Body)
	case model.ChannelSMS:
		return h.sms.SendSingle(ctx, msg.Recipient, msg.Body)
	default:
		logger.Logger.Warn("Dropping notification for unsupported channel",
			zap.String("message_id", msg.MessageID),
			zap.String("channel", string(msg.Channel)),
		)
		return nil
	}
}

// StartNotificationConsumer 阻塞直到 ctx 取消
func StartNotificationConsumer(ctx context.Context, queue, serviceName string, h *NotificationHandler) error {
	err := mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         queue,
		ConsumerTag:   "notification_consumer",
		ServiceName:   serviceName,
		PrefetchCount: 10,
		Handler:       h.Handle,
	})
	if err != nil {
		return fmt.Errorf("notification consumer stopped: %w", err)
	}
	return nil
}
