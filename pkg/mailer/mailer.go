package mailer

import (
	"context"

	"go.uber.org/zap"

	"reservationapi/pkg/logger"
)

// Sender 邮件发送接口
type Sender interface {
	Send(ctx context.Context, toEmail, toName, subject, text string) error
}

// LogSender 开发环境用，只把邮件内容打到日志里
type LogSender struct {
	from string
}

func NewLogSender(from string) *LogSender {
	return &LogSender{from: from}
}

func (s *LogSender) Send(ctx context.Context, toEmail, toName, subject, text string) error {
	logger.Logger.Info("Sending email notification",
		zap.String("from", s.from),
		zap.String("to", toEmail),
		zap.String("name", toName),
		zap.String("subject", subject),
		zap.String("body", text),
	)
	return nil
}
