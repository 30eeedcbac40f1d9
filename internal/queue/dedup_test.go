package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type kvEntry struct {
	value string
	ttl   time.Duration
}

// kvClient 只实现 SETNX/SET/DEL
type kvClient struct {
	redislib.Cmdable

	data map[string]kvEntry
	err  error
}

func newKVClient() *kvClient {
	return &kvClient{data: make(map[string]kvEntry)}
}

func (c *kvClient) SetNX(_ context.Context, key string, value interface{}, ttl time.Duration) *redislib.BoolCmd {
	if c.err != nil {
		return redislib.NewBoolResult(false, c.err)
	}
	if _, ok := c.data[key]; ok {
		return redislib.NewBoolResult(false, nil)
	}
	c.data[key] = kvEntry{value: value.(string), ttl: ttl}
	return redislib.NewBoolResult(true, nil)
}

func (c *kvClient) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redislib.StatusCmd {
	if c.err != nil {
		return redislib.NewStatusResult("", c.err)
	}
	c.data[key] = kvEntry{value: value.(string), ttl: ttl}
	return redislib.NewStatusResult("OK", nil)
}

func (c *kvClient) Del(_ context.Context, keys ...string) *redislib.IntCmd {
	if c.err != nil {
		return redislib.NewIntResult(0, c.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := c.data[k]; ok {
			delete(c.data, k)
			n++
		}
	}
	return redislib.NewIntResult(n, nil)
}

func TestRedisDeduperLifecycle(t *testing.T) {
	ctx := context.Background()
	client := newKVClient()
	d := NewRedisDeduper(client)
	const key = "rsv:mq:processed:msg-1"

	ok, err := d.TryMark(ctx, "msg-1")
	if err != nil || !ok {
		t.Fatalf("first TryMark = %v, %v", ok, err)
	}
	if got := client.data[key]; got.value != "processing" || got.ttl != processingTTL {
		t.Errorf("after TryMark %s = %+v", key, got)
	}

	ok, err = d.TryMark(ctx, "msg-1")
	if err != nil || ok {
		t.Errorf("second TryMark = %v, %v, want false", ok, err)
	}

	if err := d.MarkDone(ctx, "msg-1"); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if got := client.data[key]; got.value != "done" || got.ttl != processedTTL {
		t.Errorf("after MarkDone %s = %+v", key, got)
	}
	if ok, _ := d.TryMark(ctx, "msg-1"); ok {
		t.Error("TryMark after MarkDone should report a duplicate")
	}
}

func TestRedisDeduperUnmarkAllowsRetry(t *testing.T) {
	ctx := context.Background()
	client := newKVClient()
	d := NewRedisDeduper(client)

	if ok, _ := d.TryMark(ctx, "msg-2"); !ok {
		t.Fatal("first TryMark should succeed")
	}
	if err := d.Unmark(ctx, "msg-2"); err != nil {
		t.Fatalf("Unmark: %v", err)
	}
	if len(client.data) != 0 {
		t.Errorf("keys left after Unmark: %v", client.data)
	}
	if ok, _ := d.TryMark(ctx, "msg-2"); !ok {
		t.Error("TryMark after Unmark should succeed")
	}
}

func TestRedisDeduperPropagatesErrors(t *testing.T) {
	ctx := context.Background()
	client := newKVClient()
	client.err = errors.New("redis down")
	d := NewRedisDeduper(client)

	if ok, err := d.TryMark(ctx, "msg-3"); err == nil || ok {
		t.Errorf("TryMark = %v, %v, want error", ok, err)
	} else if !errors.Is(err, client.err) {
		t.Errorf("TryMark error %v does not wrap %v", err, client.err)
	}
	if err := d.MarkDone(ctx, "msg-3"); !errors.Is(err, client.err) {
		t.Errorf("MarkDone error = %v", err)
	}
	if err := d.Unmark(ctx, "msg-3"); !errors.Is(err, client.err) {
		t.Errorf("Unmark error = %v", err)
	}
}
