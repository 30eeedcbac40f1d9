package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"reservationapi/internal/model"
	"reservationapi/pkg/logger"
	"reservationapi/pkg/mailer"
	"reservationapi/pkg/sms"
)

const emailSubject = "Your reservation"

// Deliverer 某个通知渠道的投递能力
type Deliverer interface {
	Deliver(ctx context.Context, r *model.Reservation, message string) error
}

type emailDeliverer struct {
	sender mailer.Sender
}

func (d emailDeliverer) Deliver(ctx context.Context, r *model.Reservation, message string) error {
	if r.Email == "" {
		return fmt.Errorf("reservation %d has no email address", r.ID)
	}
	logger.WithContext(ctx).Info("Sending email notification", zap.String("to", r.Email))
	return d.sender.Send(ctx, r.Email, r.Name, emailSubject, message)
}

type smsDeliverer struct {
	client sms.Client
}

func (d smsDeliverer) Deliver(ctx context.Context, r *model.Reservation, message string) error {
	if r.PhoneNumber == "" {
		return fmt.Errorf("reservation %d has no phone number", r.ID)
	}
	logger.WithContext(ctx).Info("Sending SMS notification", zap.String("to", sms.MaskPhone(r.PhoneNumber)))
	return d.client.SendSingle(ctx, r.PhoneNumber, message)
}

// unsupportedDeliverer 没有对应渠道的联系方式（例如 Phone），只告警不投递
type unsupportedDeliverer struct {
	method string
}

func (d unsupportedDeliverer) Deliver(ctx context.Context, r *model.Reservation, message string) error {
	logger.WithContext(ctx).Warn("Unknown contact method for reservation",
		zap.Int64("reservation_id", r.ID),
		zap.String("contact_method", d.method),
	)
	return nil
}
