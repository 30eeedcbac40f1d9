package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/mailer"
	"reservationapi/pkg/metrics"
	"reservationapi/pkg/sms"
)

// UpdatedMessagePrefix 更新预约时通知内容的前缀
const UpdatedMessagePrefix = "Your reservation has been updated: "

// NotificationService 通知投递。投递失败只记录，不向调用方返回错误
type NotificationService struct {
	channels map[model.ChannelKind]Deliverer
	pending  *PendingQueue
}

func NewNotificationService(email mailer.Sender, smsClient sms.Client) *NotificationService {
	return &NotificationService{
		channels: map[model.ChannelKind]Deliverer{
			model.ChannelEmail: emailDeliverer{sender: email},
			model.ChannelSMS:   smsDeliverer{client: smsClient},
		},
		pending: NewPendingQueue(),
	}
}

// FormatNotificationMessage 纯函数，相同输入得到相同结果
func FormatNotificationMessage(r *model.Reservation) string {
	return fmt.Sprintf("Reservation confirmed for %s on %s at %s for %d guests.",
		r.Name,
		r.ReservationDate.String(),
		r.ReservationTime.String(),
		r.NumberOfGuests,
	)
}

// PreferredContactMethod 按 Email > SMS > Phone > 其他（按字母序）选择，没有联系方式时返回 false
func PreferredContactMethod(r *model.Reservation) (model.ContactMethod, bool) {
	var (
		best  model.ContactMethod
		found bool
	)
	for _, m := range r.ContactMethods {
		if !found || preferred(m.Name, best.Name) {
			best = m
			found = true
		}
	}
	return best, found
}

func preferred(a, b string) bool {
	ra, rb := model.ContactMethodRank(a), model.ContactMethodRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// deliverer 未知渠道返回 unsupported
func (s *NotificationService) deliverer(method string) (model.ChannelKind, Deliverer) {
	kind := model.ParseChannelKind(method)
	if d, ok := s.channels[kind]; ok {
		return kind, d
	}
	return model.ChannelUnsupported, unsupportedDeliverer{method: method}
}

// SendNotification 按首选联系方式投递一次
func (s *NotificationService) SendNotification(ctx context.Context, r *model.Reservation, message string) {
	method, ok := PreferredContactMethod(r)
	if !ok {
		logger.Logger.Warn("Reservation has no contact method, skipping notification",
			zap.Int64("reservation_id", r.ID),
		)
		metrics.RecordNotification(ctx, string(model.ChannelUnsupported), "skipped", 0)
		return
	}

	kind, d := s.deliverer(method.Name)
	if kind == model.ChannelUnsupported {
		_ = d.Deliver(ctx, r, message)
		metrics.RecordNotification(ctx, string(kind), "skipped", 0)
		return
	}

	s.deliver(ctx, kind, d, r, message)
}

func (s *NotificationService) SendEmailNotification(ctx context.Context, r *model.Reservation, message string) error {
	return s.deliver(ctx, model.ChannelEmail, s.channels[model.ChannelEmail], r, message)
}

func (s *NotificationService) SendSMSNotification(ctx context.Context, r *model.Reservation, message string) error {
	return s.deliver(ctx, model.ChannelSMS, s.channels[model.ChannelSMS], r, message)
}

// deliver 返回的错误只用于测试和调用方观察，失败已经交给 HandleNotificationFailure 处理
func (s *NotificationService) deliver(ctx context.Context, kind model.ChannelKind, d Deliverer, r *model.Reservation, message string) error {
	ctx = model.WithReservationID(ctx, r.ID)
	ctx = logger.ContextWithFields(ctx, zap.Int64("reservation_id", r.ID), zap.String("channel", string(kind)))
	start := time.Now()
	err := d.Deliver(ctx, r, message)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.RecordNotification(ctx, string(kind), "failed", elapsed)
		s.HandleNotificationFailure(r, err.Error())
		return err
	}

	metrics.RecordNotification(ctx, string(kind), "success", elapsed)
	s.LogNotification(r, message, true)
	return nil
}

func (s *NotificationService) HandleNotificationFailure(r *model.Reservation, reason string) {
	logger.Logger.Error("Failed to send notification",
		zap.Int64("reservation_id", r.ID),
		zap.String("reason", reason),
	)
	s.LogNotification(r, reason, false)
}

func (s *NotificationService) LogNotification(r *model.Reservation, message string, success bool) {
	line := NotificationLogLine(r, message, success)
	if success {
		logger.Logger.Info(line, zap.Int64("reservation_id", r.ID))
		return
	}
	logger.Logger.Error(line, zap.Int64("reservation_id", r.ID))
}

func NotificationLogLine(r *model.Reservation, message string, success bool) string {
	return fmt.Sprintf("Notification for reservation %d: %s. Success: %t", r.ID, message, success)
}

// ScheduleNotification 立即记入待发列表，delay 目前不生效
func (s *NotificationService) ScheduleNotification(r *model.Reservation, message string, delay time.Duration) {
	logger.Logger.Info("Scheduling notification",
		zap.Int64("reservation_id", r.ID),
		zap.Duration("delay", delay),
	)
	if !s.pending.Push("Scheduled: " + message) {
		logger.Logger.Warn("Notification service closed, dropping scheduled notification",
			zap.Int64("reservation_id", r.ID),
		)
	}
}

// PendingNotifications 返回待发列表的快照
func (s *NotificationService) PendingNotifications() []string {
	return s.pending.Snapshot()
}

// Close 丢弃尚未处理的待发通知
func (s *NotificationService) Close() {
	dropped := s.pending.Drain()
	if len(dropped) > 0 {
		logger.Logger.Warn("Discarding pending notifications on shutdown", zap.Int("count", len(dropped)))
	}
}
