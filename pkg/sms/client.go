package sms

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"reservationapi/pkg/logger"
)

// Client 短信发送接口
type Client interface {
	// SendSingle 给单个号码发送一条文本短信
	SendSingle(ctx context.Context, phone, message string) error
}

// LogClient 只打日志的短信客户端，没有真实网关时使用
type LogClient struct{}

func NewLogClient() *LogClient {
	return &LogClient{}
}

func (LogClient) SendSingle(ctx context.Context, phone, message string) error {
	logger.Logger.Info("Sending SMS notification",
		zap.String("phone", MaskPhone(phone)),
		zap.String("message", message),
	)
	return nil
}

// MaskPhone 只保留后四位
func MaskPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
