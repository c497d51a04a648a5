package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	client := &Client{store: store}

	attempts := []struct {
		wantAllowed bool
		wantCount   int64
	}{
		{true, 1},
		{true, 2},
		{false, 3},
	}
	for i, want := range attempts {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 2, time.Second)
		if err != nil {
			t.Fatalf("attempt %d: unexpected error: %v", i+1, err)
		}
		if allowed != want.wantAllowed {
			t.Fatalf("attempt %d: allowed=%v, want %v", i+1, allowed, want.wantAllowed)
		}
		if want.wantAllowed && count != want.wantCount {
			t.Fatalf("attempt %d: count=%d, want %d", i+1, count, want.wantCount)
		}
	}

	// The window TTL is set once, on the first increment.
	if n := len(store.expires); n != 1 {
		t.Fatalf("expected exactly one expire call, got %d", n)
	}
}

func TestIncrWithTTLSetsWindowOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	client := &Client{store: store}

	for i := 0; i < 3; i++ {
		if _, err := client.IncrWithTTL(ctx, "rl:ip:login:1.2.3.4", time.Minute); err != nil {
			t.Fatalf("incr %d: %v", i+1, err)
		}
	}
	if n := len(store.expires); n != 1 {
		t.Fatalf("ttl should only be applied on first increment, got %d calls", n)
	}
	if store.expires[0].ttl != time.Minute {
		t.Fatalf("unexpected ttl %s", store.expires[0].ttl)
	}
}

func TestIdempotencySetNX(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMemoryStore()}

	key := client.IdempotencyKey("bookings", "req-1")
	if first, err := client.SetNX(ctx, key, "1", time.Minute); err != nil || !first {
		t.Fatalf("first claim: got (%v, %v), want (true, nil)", first, err)
	}
	if second, err := client.SetNX(ctx, key, "1", time.Minute); err != nil || second {
		t.Fatalf("replayed claim: got (%v, %v), want (false, nil)", second, err)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}

	cases := []struct{ got, want string }{
		{client.IdempotencyKey("bookings", "id"), "s2g:idempotency:bookings:id"},
		{client.RateLimitKey("login:ip:1.2.3.4"), "s2g:rate_limit:login:ip:1.2.3.4"},
		{client.IdempotencyKey("bookings", ""), "s2g:idempotency:bookings"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("key mismatch: got %q, want %q", tc.got, tc.want)
		}
	}
}

// memoryStore implements the cmdable surface against plain maps.
type memoryStore struct {
	data    map[string]string
	counts  map[string]int64
	expires []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}, counts: map[string]int64{}}
}

func (m *memoryStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryStore) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := m.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *memoryStore) Incr(_ context.Context, key string) *redis.IntCmd {
	m.counts[key]++
	return redis.NewIntResult(m.counts[key], nil)
}

func (m *memoryStore) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expires = append(m.expires, expireCall{key: key, ttl: ttl})
	return redis.NewBoolResult(true, nil)
}

func (m *memoryStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
