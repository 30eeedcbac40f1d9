package mailer

import (
	"context"
	"errors"
	"sync"
)

type MockMail struct {
	To      string
	Name    string
	Subject string
	Text    string
}

// MockSender 记录发送的邮件，FailNext 为 true 时下一次发送失败
type MockSender struct {
	mu   sync.Mutex
	sent []MockMail

	FailNext bool
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, toEmail, toName, subject, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, MockMail{To: toEmail, Name: toName, Subject: subject, Text: text})

	if m.FailNext {
		m.FailNext = false
		return errors.New("mock email send failure")
	}
	return nil
}

func (m *MockSender) Sent() []MockMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockMail, len(m.sent))
	copy(out, m.sent)
	return out
}
