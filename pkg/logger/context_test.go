package logger

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func withObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = prev })
	return logs
}

func TestWithContextFields(t *testing.T) {
	logs := withObserver(t)

	ctx := ContextWithFields(context.Background(), zap.String("request_id", "req-1"))
	ctx = ContextWithFields(ctx, zap.Int64("reservation_id", 9))
	WithContext(ctx).Info("hello")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["reservation_id"] != int64(9) {
		t.Errorf("fields = %v", fields)
	}
}

func TestWithContextTrace(t *testing.T) {
	logs := withObserver(t)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3},
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	WithContext(ctx).Info("traced")

	fields := logs.All()[0].ContextMap()
	if fields["trace_id"] != sc.TraceID().String() || fields["span_id"] != sc.SpanID().String() {
		t.Errorf("fields = %v", fields)
	}
}

func TestWithContextPlain(t *testing.T) {
	logs := withObserver(t)

	WithContext(context.Background()).Info("plain")
	if n := len(logs.All()[0].Context); n != 0 {
		t.Errorf("expected no extra fields, got %d", n)
	}
}
