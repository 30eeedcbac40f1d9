package service

import (
	"context"
	"sync"

	"reservationapi/pkg/metrics"
)

// PendingQueue 进程内的待发通知列表，并发安全
type PendingQueue struct {
	mu     sync.Mutex
	items  []string
	closed bool
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{}
}

// Push 关闭后再写入会被丢弃并返回 false
func (q *PendingQueue) Push(item string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, item)
	metrics.AddPending(context.Background(), 1)
	return true
}

// Snapshot 返回当前内容的副本
func (q *PendingQueue) Snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, len(q.items))
	copy(out, q.items)
	return out
}

func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain 取走全部内容并关闭队列
func (q *PendingQueue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	q.closed = true
	metrics.AddPending(context.Background(), -int64(len(items)))
	return items
}
