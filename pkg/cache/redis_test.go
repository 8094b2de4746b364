package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeRedis struct {
	data     map[string]string
	ttls     map[string]time.Duration
	failures int
	calls    int
	closed   bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) fail() error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if err := f.fail(); err != nil {
		return redis.NewStringResult("", err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	if err := f.fail(); err != nil {
		return redis.NewStatusResult("", err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if err := f.fail(); err != nil {
		return redis.NewIntResult(0, err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Ping(context.Context) *redis.StatusCmd {
	if err := f.fail(); err != nil {
		return redis.NewStatusResult("", err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func newTestRedisCache(f *fakeRedis) *RedisCache {
	c := newRedisCache(f, "plasmap:")
	c.backoff = Backoff{Attempts: 3, Delay: time.Millisecond}
	return c
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	f := newFakeRedis()
	c := newTestRedisCache(f)

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("missing key: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("<svg/>"), TTLArtifact); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f.data["plasmap:k"] != "<svg/>" {
		t.Errorf("key should be stored under the prefix: %v", f.data)
	}
	if f.ttls["plasmap:k"] != TTLArtifact {
		t.Errorf("ttl = %v, want %v", f.ttls["plasmap:k"], TTLArtifact)
	}

	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := f.data["plasmap:k"]; ok {
		t.Error("Delete should remove the key")
	}

	if err := c.Close(); err != nil || !f.closed {
		t.Error("Close should close the client")
	}
}

func TestRedisCacheRetries(t *testing.T) {
	ctx := context.Background()

	f := newFakeRedis()
	f.failures = 2
	c := newTestRedisCache(f)
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("two transient failures should be retried: %v", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}

	f = newFakeRedis()
	f.failures = 10
	c = newTestRedisCache(f)
	err := c.Set(ctx, "k", []byte("v"), 0)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("exhausted retries should report ErrUnavailable: %v", err)
	}
	if f.calls != 3 {
		t.Errorf("calls = %d, want 3", f.calls)
	}
}
