package mq

import (
	"context"
	"sort"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestInstrumentedChannelExposesRawChannel(t *testing.T) {
	raw := &amqp.Channel{}
	ic := NewInstrumentedChannel(raw, "reservationapi")

	if ic.Channel() != raw {
		t.Error("Channel() should return the wrapped amqp channel")
	}
	if NewInstrumentedChannel(nil, "reservationapi").Channel() != nil {
		t.Error("Channel() on an empty wrapper should be nil")
	}
}

func TestMessageHeaderCarrier(t *testing.T) {
	carrier := &MessageHeaderCarrier{}
	carrier.Set("traceparent", "00-abc-def-01")
	carrier.Set("tracestate", "k=v")

	if got := carrier.Get("traceparent"); got != "00-abc-def-01" {
		t.Errorf("Get(traceparent) = %q", got)
	}
	if got := carrier.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q", got)
	}

	carrier.Headers["retry"] = int32(1)
	if got := carrier.Get("retry"); got != "" {
		t.Errorf("non-string header should read as empty, got %q", got)
	}

	keys := carrier.Keys()
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "retry" || keys[1] != "traceparent" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestTraceContextRoundTrip(t *testing.T) {
	prop := propagation.TraceContext{}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})

	carrier := &MessageHeaderCarrier{}
	prop.Inject(trace.ContextWithSpanContext(context.Background(), sc), carrier)

	got := trace.SpanContextFromContext(prop.Extract(context.Background(), &MessageHeaderCarrier{Headers: carrier.Headers}))
	if got.TraceID() != sc.TraceID() || got.SpanID() != sc.SpanID() {
		t.Errorf("extracted %v, want %v", got, sc)
	}
}
