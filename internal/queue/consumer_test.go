package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"reservationapi/internal/model"
	"reservationapi/pkg/mailer"
	"reservationapi/pkg/sms"
)

type memoryDeduper struct {
	mu    sync.Mutex
	state map[string]string
	err   error
}

func newMemoryDeduper() *memoryDeduper {
	return &memoryDeduper{state: make(map[string]string)}
}

func (d *memoryDeduper) TryMark(ctx context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	if _, ok := d.state[id]; ok {
		return false, nil
	}
	d.state[id] = "processing"
	return true, nil
}

func (d *memoryDeduper) MarkDone(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state[id] = "done"
	return nil
}

func (d *memoryDeduper) Unmark(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.state, id)
	return nil
}

func encode(t *testing.T, msg model.NotificationMessage) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

func TestNotificationHandler_Dispatch(t *testing.T) {
	ctx := context.Background()
	email := mailer.NewMockSender()
	smsClient := sms.NewMockClient()
	h := NewNotificationHandler(email, smsClient, nil)

	msgs := []model.NotificationMessage{
		{MessageID: "ntf_1", Channel: model.ChannelEmail, Recipient: "a@test.com", RecipientName: "A", Subject: "s", Body: "email body"},
		{MessageID: "ntf_2", Channel: model.ChannelSMS, Recipient: "+1555", Body: "sms body"},
		{MessageID: "ntf_3", Channel: model.ChannelUnsupported, Recipient: "?", Body: "dropped"},
	}
	for _, m := range msgs {
		if err := h.Handle(ctx, encode(t, m)); err != nil {
			t.Fatalf("Handle(%s) error = %v", m.MessageID, err)
		}
	}

	sent := email.Sent()
	if len(sent) != 1 || sent[0].To != "a@test.com" || sent[0].Text != "email body" {
		t.Errorf("emails = %+v", sent)
	}
	calls := smsClient.Calls()
	if len(calls) != 1 || calls[0].Phone != "+1555" || calls[0].Message != "sms body" {
		t.Errorf("sms = %+v", calls)
	}
}

func TestNotificationHandler_MalformedMessage(t *testing.T) {
	h := NewNotificationHandler(mailer.NewMockSender(), sms.NewMockClient(), nil)

	if err := h.Handle(context.Background(), []byte("{not json")); err != nil {
		t.Errorf("malformed message should be discarded, got %v", err)
	}
}

func TestNotificationHandler_Dedup(t *testing.T) {
	ctx := context.Background()
	email := mailer.NewMockSender()
	deduper := newMemoryDeduper()
	h := NewNotificationHandler(email, sms.NewMockClient(), deduper)

	body := encode(t, model.NotificationMessage{MessageID: "ntf_dup", Channel: model.ChannelEmail, Recipient: "a@test.com", Body: "x"})
	for i := 0; i < 3; i++ {
		if err := h.Handle(ctx, body); err != nil {
			t.Fatalf("Handle() error = %v", err)
		}
	}

	if n := len(email.Sent()); n != 1 {
		t.Errorf("emails sent = %d, want 1", n)
	}
	if deduper.state["ntf_dup"] != "done" {
		t.Errorf("state = %q, want done", deduper.state["ntf_dup"])
	}
}

func TestNotificationHandler_FailureUnmarks(t *testing.T) {
	ctx := context.Background()
	email := mailer.NewMockSender()
	deduper := newMemoryDeduper()
	h := NewNotificationHandler(email, sms.NewMockClient(), deduper)

	body := encode(t, model.NotificationMessage{MessageID: "ntf_fail", Channel: model.ChannelEmail, Recipient: "a@test.com", Body: "x"})

	email.FailNext = true
	if err := h.Handle(ctx, body); err == nil {
		t.Fatal("expected send error")
	}
	if _, ok := deduper.state["ntf_fail"]; ok {
		t.Error("failed message should be unmarked so a redelivery is processed")
	}

	if err := h.Handle(ctx, body); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if n := len(email.Sent()); n != 2 {
		t.Errorf("send attempts = %d, want 2", n)
	}
}

func TestNotificationHandler_DeduperErrorStillDelivers(t *testing.T) {
	smsClient := sms.NewMockClient()
	deduper := newMemoryDeduper()
	deduper.err = errors.New("redis down")
	h := NewNotificationHandler(mailer.NewMockSender(), smsClient, deduper)

	body := encode(t, model.NotificationMessage{MessageID: "ntf_x", Channel: model.ChannelSMS, Recipient: "+1", Body: "x"})
	if err := h.Handle(context.Background(), body); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if n := len(smsClient.Calls()); n != 1 {
		t.Errorf("sms sent = %d, want 1", n)
	}
}
