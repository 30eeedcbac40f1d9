package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics 通知相关的 OpenTelemetry 指标
type OTelMetrics struct {
	NotificationsSentTotal   metric.Int64Counter
	NotificationSendDuration metric.Float64Histogram
	NotificationsPending     metric.Int64UpDownCounter
}

var metrics *OTelMetrics

func init() {
	// 全局 meter 在 SetMeterProvider 前后都可用，这里先建好，避免调用方判空
	_ = InitMetrics(otel.Meter("reservationapi/notification"))
}

// InitMetrics 用给定的 meter 重新创建指标
func InitMetrics(meter metric.Meter) error {
	m := &OTelMetrics{}
	var err error

	m.NotificationsSentTotal, err = meter.Int64Counter(
		"notifications.sent.total",
		metric.WithDescription("Total number of notification delivery attempts"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	m.NotificationSendDuration, err = meter.Float64Histogram(
		"notifications.send.duration",
		metric.WithDescription("Time spent delivering a notification"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.NotificationsPending, err = meter.Int64UpDownCounter(
		"notifications.pending",
		metric.WithDescription("Number of scheduled notifications waiting in memory"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordNotification 记录一次投递，status 为 success、failed 或 skipped
func RecordNotification(ctx context.Context, channel, status string, seconds float64) {
	m := GetMetrics()
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	)
	m.NotificationsSentTotal.Add(ctx, 1, attrs)
	m.NotificationSendDuration.Record(ctx, seconds, attrs)
}

// AddPending 调整内存中待发通知的计数
func AddPending(ctx context.Context, delta int64) {
	if m := GetMetrics(); m != nil {
		m.NotificationsPending.Add(ctx, delta)
	}
}
